package configports

import (
	"context"

	configdomain "ideadist.dev/cli/internal/core/domain/config"
)

type Loader interface {
	Load(ctx context.Context) (configdomain.Snapshot, error)
	Name() string
}

type Validator interface {
	Validate(snap configdomain.Snapshot) error
}
