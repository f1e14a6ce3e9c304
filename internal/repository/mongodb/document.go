package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
)

type instrumentDocument struct {
	ID             string `bson:"_id"`
	InstrumentName string `bson:"instrumentName"`
	SkillLevel     string `bson:"skillLevel"`
}

type profileDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Email       string               `bson:"email"`
	Password    string               `bson:"password"`
	FirstName   string               `bson:"firstName"`
	LastName    string               `bson:"lastName"`
	Description string               `bson:"description"`
	City        string               `bson:"city"`
	ZipCode     string               `bson:"zipCode"`
	Status      bool                 `bson:"status"`
	Newsletter  bool                 `bson:"newsletter"`
	Instruments []instrumentDocument `bson:"instruments"`
	Version     int64                `bson:"version"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func toInstrumentDocuments(instruments []domain.Instrument) []instrumentDocument {
	docs := make([]instrumentDocument, 0, len(instruments))
	for _, inst := range instruments {
		docs = append(docs, instrumentDocument{
			ID:             inst.ID,
			InstrumentName: inst.InstrumentName,
			SkillLevel:     inst.SkillLevel,
		})
	}
	return docs
}

func toDocument(p *domain.Profile) profileDocument {
	return profileDocument{
		Email:       p.Email,
		Password:    p.Password,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Description: p.Description,
		City:        p.City,
		ZipCode:     p.ZipCode,
		Status:      p.Status,
		Newsletter:  p.Newsletter,
		Instruments: toInstrumentDocuments(p.Instruments),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d *profileDocument) toDomain() *domain.Profile {
	instruments := make([]domain.Instrument, 0, len(d.Instruments))
	for _, inst := range d.Instruments {
		instruments = append(instruments, domain.Instrument{
			ID:             inst.ID,
			InstrumentName: inst.InstrumentName,
			SkillLevel:     inst.SkillLevel,
		})
	}

	return &domain.Profile{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Password:    d.Password,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Description: d.Description,
		City:        d.City,
		ZipCode:     d.ZipCode,
		Status:      d.Status,
		Newsletter:  d.Newsletter,
		Instruments: instruments,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
