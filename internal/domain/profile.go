package domain

import "time"

type Profile struct {
	ID          string       `json:"id" db:"id"`
	Email       string       `json:"email" db:"email"`
	Password    string       `json:"-" db:"password"`
	FirstName   string       `json:"first_name" db:"first_name"`
	LastName    string       `json:"last_name" db:"last_name"`
	Description string       `json:"description" db:"description"`
	City        string       `json:"city" db:"city"`
	ZipCode     string       `json:"zip_code" db:"zip_code"`
	Status      bool         `json:"status" db:"status"`
	Newsletter  bool         `json:"newsletter" db:"newsletter"`
	Instruments []Instrument `json:"instruments" db:"instruments"`
	Version     int64        `json:"version" db:"version"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// ProfileChanges is a partial update: nil fields are left untouched.
type ProfileChanges struct {
	Email       *string
	FirstName   *string
	LastName    *string
	Description *string
	City        *string
	ZipCode     *string
	Status      *bool
	Newsletter  *bool
}

// IsEmpty reports whether no field is set.
func (c ProfileChanges) IsEmpty() bool {
	return c.Email == nil && c.FirstName == nil && c.LastName == nil &&
		c.Description == nil && c.City == nil && c.ZipCode == nil &&
		c.Status == nil && c.Newsletter == nil
}

// Apply copies the set fields onto p.
func (c ProfileChanges) Apply(p *Profile) {
	if c.Email != nil {
		p.Email = *c.Email
	}
	if c.FirstName != nil {
		p.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		p.LastName = *c.LastName
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.City != nil {
		p.City = *c.City
	}
	if c.ZipCode != nil {
		p.ZipCode = *c.ZipCode
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.Newsletter != nil {
		p.Newsletter = *c.Newsletter
	}
}

// ProfileFilter selects profiles for bulk operations. Nil fields do not constrain the
// match, so an empty filter matches every profile. A non-nil empty IDs matches nothing.
type ProfileFilter struct {
	IDs        []string
	Email      *string
	Status     *bool
	Newsletter *bool
}

// Matches reports whether p satisfies the filter.
func (f ProfileFilter) Matches(p *Profile) bool {
	if f.IDs != nil {
		found := false
		for _, id := range f.IDs {
			if id == p.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Email != nil && *f.Email != p.Email {
		return false
	}
	if f.Status != nil && *f.Status != p.Status {
		return false
	}
	if f.Newsletter != nil && *f.Newsletter != p.Newsletter {
		return false
	}
	return true
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Instruments != nil {
		clone.Instruments = make([]Instrument, len(p.Instruments))
		copy(clone.Instruments, p.Instruments)
	}
	return &clone
}
