// Package fees resolves the amount owed to a professional for attending one
// consultation. Amounts are integer cents; they are snapshotted onto the
// session at start time and never recomputed.
package fees

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
)

// Defaults are the system fallback rates applied when a professional has no
// custom rate for a modality. They come from configuration.
type Defaults struct {
	PresencialCents   int64
	VideollamadaCents int64
}

type Schedule struct {
	dir      directory.Directory
	defaults Defaults
}

func NewSchedule(dir directory.Directory, defaults Defaults) *Schedule {
	return &Schedule{dir: dir, defaults: defaults}
}

// Resolve returns the fee in cents for one visit by the given professional in
// the given modality. An unknown professional is an error; a missing custom
// rate is not, it just means the default applies.
func (s *Schedule) Resolve(ctx context.Context, professionalID uuid.UUID, modality appointment.Modality) (int64, error) {
	prof, err := s.dir.GetProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, directory.ErrProfessionalNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("load professional: %w", err)
	}

	switch modality {
	case appointment.ModalityPresencial:
		if prof.FeeRate.PresencialCents != nil {
			return *prof.FeeRate.PresencialCents, nil
		}
		return s.defaults.PresencialCents, nil
	case appointment.ModalityTelemedicina:
		if prof.FeeRate.VideollamadaCents != nil {
			return *prof.FeeRate.VideollamadaCents, nil
		}
		return s.defaults.VideollamadaCents, nil
	default:
		return 0, appointment.ErrUnknownModality
	}
}
