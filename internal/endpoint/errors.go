package endpoint

import "errors"

var errEmptyBootstrap = errors.New("endpoint: bootstrap list is empty")
