package grpcapi

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

func invalidArg(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

func field(in *structpb.Struct, key string) (*structpb.Value, bool) {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func optString(in *structpb.Struct, key string) (string, bool, error) {
	v, ok := field(in, key)
	if !ok {
		return "", false, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", false, invalidArg("%s must be a string", key)
	}
	return s.StringValue, true, nil
}

func reqString(in *structpb.Struct, key string) (string, error) {
	s, ok, err := optString(in, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalidArg("%s is required", key)
	}
	return s, nil
}

func toInt64(key string, v *structpb.Value) (int64, error) {
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, invalidArg("%s must be an integer", key)
	}
	return int64(n.NumberValue), nil
}

func optInt(in *structpb.Struct, key string) (int, bool, error) {
	v, ok := field(in, key)
	if !ok {
		return 0, false, nil
	}
	n, err := toInt64(key, v)
	if err != nil {
		return 0, false, err
	}
	return int(n), true, nil
}

func reqInt(in *structpb.Struct, key string) (int, error) {
	n, ok, err := optInt(in, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invalidArg("%s is required", key)
	}
	return n, nil
}

// optIDs returns nil when key is absent and a non-nil slice when it is present.
func optIDs(in *structpb.Struct, key string) ([]int64, error) {
	v, ok := field(in, key)
	if !ok {
		return nil, nil
	}
	list, isList := v.GetKind().(*structpb.Value_ListValue)
	if !isList {
		return nil, invalidArg("%s must be a list", key)
	}
	ids := make([]int64, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		id, err := toInt64(key, item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := utils.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, invalidArg("%v", err)
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	c, err := utils.ParseClock(s)
	if err != nil {
		return 0, invalidArg("%v", err)
	}
	return c, nil
}

func parseID(in *structpb.Struct) (uuid.UUID, error) {
	raw, err := reqString(in, "id")
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidArg("invalid booking id")
	}
	return id, nil
}

func idList(ids []int64) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

func bookingFields(b *calendar.Booking, loc *time.Location) map[string]any {
	return map[string]any{
		"id":            b.ID.String(),
		"startTime":     b.Start.In(loc).Format("2006-01-02T15:04:05"),
		"endTime":       b.End.In(loc).Format("2006-01-02T15:04:05"),
		"durationHours": b.DurationHours,
		"customer":      b.Customer,
		"vehicleId":     b.VehicleID,
		"cleanerIds":    idList(b.CleanerIDs),
	}
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return s, nil
}
