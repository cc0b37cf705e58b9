package repository

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	slotListType  = reflect.TypeOf([]models.MeetingSlot{})
	timestampKeys = [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}}
	dateLayouts   = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
)

// decodeDocument fills out from a stored document. Field names follow the
// json tags of the entity types so documents written by other clients decode
// unchanged.
func decodeDocument(document store.Document, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeHook,
			legacySlotHook,
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}

	data := make(map[string]any, len(document.Data))
	for key, value := range document.Data {
		data[key] = value
	}
	delete(data, "id")

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("decode %s: %w", document.ID, err)
	}
	return nil
}

func decodeSemester(document store.Document) (models.Semester, error) {
	var semester models.Semester
	if err := decodeDocument(document, &semester); err != nil {
		return models.Semester{}, err
	}
	semester.ID = snowflake.ID(document.ID)
	if semester.CourseIDs == nil {
		semester.CourseIDs = []snowflake.ID{}
	}
	return semester, nil
}

func decodeCourse(document store.Document) (models.Course, error) {
	var course models.Course
	if err := decodeDocument(document, &course); err != nil {
		return models.Course{}, err
	}
	course.ID = snowflake.ID(document.ID)
	if course.AssignmentIDs == nil {
		course.AssignmentIDs = []snowflake.ID{}
	}
	if course.Resources == nil {
		course.Resources = []models.ResourceLink{}
	}
	return course, nil
}

func decodeAssignment(document store.Document) (models.Assignment, error) {
	var assignment models.Assignment
	if err := decodeDocument(document, &assignment); err != nil {
		return models.Assignment{}, err
	}
	assignment.ID = snowflake.ID(document.ID)
	if assignment.Resources == nil {
		assignment.Resources = []models.ResourceLink{}
	}
	return assignment, nil
}

// timeHook accepts the timestamp shapes different writers have produced:
// native times, BSON datetimes, ISO strings, epoch milliseconds and
// {seconds, nanoseconds} maps.
func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	return toTime(data)
}

func toTime(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, nil
		}
		return *v, nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC(), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("unrecognised timestamp %q", v)
	case json.Number:
		millis, ok := number(v)
		if !ok {
			return nil, fmt.Errorf("unrecognised timestamp %q", v.String())
		}
		return time.UnixMilli(int64(millis)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int32:
		return time.UnixMilli(int64(v)).UTC(), nil
	case map[string]any:
		for _, keys := range timestampKeys {
			seconds, ok := number(v[keys[0]])
			if !ok {
				continue
			}
			nanos, _ := number(v[keys[1]])
			return time.Unix(int64(seconds), int64(nanos)).UTC(), nil
		}
		return nil, fmt.Errorf("unrecognised timestamp object")
	default:
		return nil, fmt.Errorf("unrecognised timestamp type %T", value)
	}
}

// legacySlotHook lets a day written as a single slot object, or as null,
// decode into a slot list.
func legacySlotHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != slotListType {
		return data, nil
	}
	switch v := data.(type) {
	case nil:
		return []any{}, nil
	case map[string]any:
		return []any{v}, nil
	default:
		return data, nil
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
