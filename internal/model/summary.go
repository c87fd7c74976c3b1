package model

import "time"

// Status represents the final state of a transfer.
type Status string

const (
	// StatusSuccess means the file was downloaded and moved into place.
	StatusSuccess Status = "Success"

	// StatusFail means every attempt failed; the reason is kept in the Summary.
	StatusFail Status = "Fail"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsSuccess returns true if the transfer completed.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Summary is the outcome of transferring one Descriptor.
//
// The transfer engine produces exactly one Summary per input descriptor and
// the Summary carries its originating descriptor. It is not modified after
// being returned.
type Summary struct {
	// Descriptor is the download this summary belongs to.
	Descriptor Descriptor

	// Status is the final state of the transfer.
	Status Status

	// Reason is the last error when Status is StatusFail, nil otherwise.
	Reason error

	// Attempts is the number of attempts made, including the successful one.
	Attempts int

	// Bytes is the number of bytes written by the last attempt.
	Bytes int64

	// Duration is the wall time spent on all attempts.
	Duration time.Duration
}

// SuccessSummary creates a successful Summary.
func SuccessSummary(d Descriptor, attempts int, bytes int64, elapsed time.Duration) Summary {
	return Summary{Descriptor: d, Status: StatusSuccess, Attempts: attempts, Bytes: bytes, Duration: elapsed}
}

// FailureSummary creates a failed Summary.
func FailureSummary(d Descriptor, attempts int, reason error, elapsed time.Duration) Summary {
	return Summary{Descriptor: d, Status: StatusFail, Reason: reason, Attempts: attempts, Duration: elapsed}
}

// Failed reports whether the transfer failed.
func (s Summary) Failed() bool {
	return s.Status == StatusFail
}
