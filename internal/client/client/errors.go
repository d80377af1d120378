package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/genzes/internal/common"
)

var (
	ErrUnavailable  = fmt.Errorf("server unavailable: %w", common.ErrRemoteUnavailable)
	ErrUnauthorized = errors.New("unauthorized")
)
