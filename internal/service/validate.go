package service

import "github.com/go-playground/validator/v10"

// validate checks input structs against their validate tags.
var validate = validator.New()
