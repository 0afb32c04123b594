package transit

import "errors"

var ErrNotFound = errors.New("not found")
