package domain

type Instrument struct {
	ID             string `json:"id" db:"id"`
	InstrumentName string `json:"instrument_name" db:"instrument_name"`
	SkillLevel     string `json:"skill_level" db:"skill_level"`
}

// InstrumentOutcome tells the caller what an instrument mutation did.
type InstrumentOutcome string

const (
	OutcomeAdded     InstrumentOutcome = "added"
	OutcomeUpdated   InstrumentOutcome = "updated"
	OutcomeRemoved   InstrumentOutcome = "removed"
	OutcomeDuplicate InstrumentOutcome = "duplicate"
	OutcomeUnchanged InstrumentOutcome = "unchanged"
)

// Changed reports whether the outcome implies a new instrument list.
func (o InstrumentOutcome) Changed() bool {
	return o == OutcomeAdded || o == OutcomeUpdated || o == OutcomeRemoved
}

// AddInstrument appends inst unless an entry with the same name exists.
// The input slice is never modified.
func AddInstrument(list []Instrument, inst Instrument) ([]Instrument, InstrumentOutcome) {
	for _, item := range list {
		if item.InstrumentName == inst.InstrumentName {
			return list, OutcomeDuplicate
		}
	}

	out := make([]Instrument, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, inst)
	return out, OutcomeAdded
}

// EditInstrument replaces the name and skill level of the entry with the given id,
// keeping its id. Another entry holding the same name and level is a duplicate.
func EditInstrument(list []Instrument, instrumentID string, inst Instrument) ([]Instrument, InstrumentOutcome, error) {
	index := -1
	for i, item := range list {
		if item.ID == instrumentID {
			index = i
			break
		}
	}
	if index == -1 {
		return list, "", ErrInstrumentNotFound
	}

	current := list[index]
	if current.InstrumentName == inst.InstrumentName && current.SkillLevel == inst.SkillLevel {
		return list, OutcomeUnchanged, nil
	}

	for i, item := range list {
		if i == index {
			continue
		}
		if item.InstrumentName == inst.InstrumentName && item.SkillLevel == inst.SkillLevel {
			return list, OutcomeDuplicate, nil
		}
	}

	out := make([]Instrument, len(list))
	copy(out, list)
	out[index] = Instrument{
		ID:             current.ID,
		InstrumentName: inst.InstrumentName,
		SkillLevel:     inst.SkillLevel,
	}
	return out, OutcomeUpdated, nil
}

// RemoveInstrument drops every entry with the given id.
func RemoveInstrument(list []Instrument, instrumentID string) ([]Instrument, InstrumentOutcome) {
	out := make([]Instrument, 0, len(list))
	for _, item := range list {
		if item.ID != instrumentID {
			out = append(out, item)
		}
	}
	if len(out) == len(list) {
		return list, OutcomeUnchanged
	}
	return out, OutcomeRemoved
}
