package rule

import "errors"

var ErrDuplicateDependency = errors.New("dependency type declared more than once")
