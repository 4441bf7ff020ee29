package usecase

import (
	"context"
	"errors"

	"github.com/NasaVasa/newsalerts/internal/domain"
)

// Notifiers fans an alert out to every notifier and joins their errors.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, alert domain.Alert) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
