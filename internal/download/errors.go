package download

import "fmt"

// TransferError is the reason stored in a failed summary.
type TransferError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransferError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%v (after %d attempts)", e.Err, e.Attempts)
	}
	return e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
