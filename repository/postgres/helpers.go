package postgres

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func marshalSubTasks(list []domain.SubTask) ([]byte, error) {
	if list == nil {
		list = []domain.SubTask{}
	}
	return json.Marshal(list)
}

func marshalAssignee(a *domain.StaffMember) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// decodeColumn returns the zero value for a column that does not hold valid JSON.
func decodeColumn[T any](logger *zap.Logger, id, column string, raw []byte) T {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("malformed task column, reading as empty",
			zap.String("id", id), zap.String("column", column), zap.Error(err))
		var zero T
		return zero
	}
	return v
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilSubTasks(list []domain.SubTask) []domain.SubTask {
	if list == nil {
		return []domain.SubTask{}
	}
	return list
}

// The opt* helpers turn absent patch fields into SQL NULL so COALESCE keeps the stored value.

func optString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optDate(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return domain.CalendarDay(*v)
}

func optJSON(present bool, v interface{}) (interface{}, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
