package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
)

// instrumentList stores a profile's instruments in a JSONB column.
type instrumentList []domain.Instrument

func (l instrumentList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]domain.Instrument(l))
}

func (l *instrumentList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = instrumentList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported instruments column type %T", src)
	}

	var list []domain.Instrument
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to decode instruments: %w", err)
	}
	if list == nil {
		list = []domain.Instrument{}
	}
	*l = list
	return nil
}
