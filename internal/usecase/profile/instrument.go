package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
)

// InstrumentInput represents an instrument entry supplied by the caller
type InstrumentInput struct {
	InstrumentName string `json:"instrument_name"`
	SkillLevel     string `json:"skill_level"`
}

// InstrumentResult is the profile after an instrument operation together with what the
// operation did. When Outcome is duplicate or unchanged nothing was written.
type InstrumentResult struct {
	Profile *domain.Profile          `json:"profile"`
	Outcome domain.InstrumentOutcome `json:"outcome"`
}

type instrumentMutation func(list []domain.Instrument) ([]domain.Instrument, domain.InstrumentOutcome, error)

// AddInstrument appends an instrument unless one with the same name is already listed
func (uc *ProfileUseCase) AddInstrument(ctx context.Context, id string, input InstrumentInput) (*InstrumentResult, error) {
	inst := domain.Instrument{
		ID:             uc.newID(),
		InstrumentName: input.InstrumentName,
		SkillLevel:     input.SkillLevel,
	}

	return uc.mutateInstruments(ctx, id, "add", func(list []domain.Instrument) ([]domain.Instrument, domain.InstrumentOutcome, error) {
		out, outcome := domain.AddInstrument(list, inst)
		return out, outcome, nil
	})
}

// EditInstrument replaces name and skill level of one entry, keeping its id
func (uc *ProfileUseCase) EditInstrument(ctx context.Context, id, instrumentID string, input InstrumentInput) (*InstrumentResult, error) {
	inst := domain.Instrument{
		InstrumentName: input.InstrumentName,
		SkillLevel:     input.SkillLevel,
	}

	return uc.mutateInstruments(ctx, id, "edit", func(list []domain.Instrument) ([]domain.Instrument, domain.InstrumentOutcome, error) {
		return domain.EditInstrument(list, instrumentID, inst)
	})
}

// RemoveInstrument drops the entry with the given id
func (uc *ProfileUseCase) RemoveInstrument(ctx context.Context, id, instrumentID string) (*InstrumentResult, error) {
	return uc.mutateInstruments(ctx, id, "remove", func(list []domain.Instrument) ([]domain.Instrument, domain.InstrumentOutcome, error) {
		out, outcome := domain.RemoveInstrument(list, instrumentID)
		return out, outcome, nil
	})
}

// mutateInstruments loads the profile, applies mutate and saves the new list with a
// version check, reloading on conflict up to maxRetries times.
func (uc *ProfileUseCase) mutateInstruments(ctx context.Context, id, op string, mutate instrumentMutation) (*InstrumentResult, error) {
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		profile, err := uc.profileRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		instruments, outcome, err := mutate(profile.Instruments)
		if err != nil {
			return nil, err
		}
		if !outcome.Changed() {
			return &InstrumentResult{Profile: profile, Outcome: outcome}, nil
		}

		saved, err := uc.profileRepo.ReplaceInstruments(ctx, id, profile.Version, instruments)
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.logger.Debug("Profile service: instrument list changed concurrently, retrying",
				"id", id, "op", op, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save instruments: %w", err)
		}

		return &InstrumentResult{Profile: saved, Outcome: outcome}, nil
	}

	uc.logger.Warn("Profile service: giving up on instrument update", "id", id, "op", op, "attempts", uc.maxRetries)
	return nil, fmt.Errorf("failed to %s instrument after %d attempts: %w", op, uc.maxRetries, domain.ErrConcurrentModification)
}
