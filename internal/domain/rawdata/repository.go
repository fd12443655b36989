package rawdata

import "context"

type Repository interface {
	SaveMany(ctx context.Context, items []Payload) error
}
