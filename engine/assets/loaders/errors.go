package loaders

import "errors"

var errCannotCreate = errors.New("loader cannot create new assets")
