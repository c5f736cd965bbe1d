package converter

import (
	"cloud.google.com/go/datastore/apiv1/datastorepb"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/web3-inreach/jentity/internal/errors"
	"github.com/web3-inreach/jentity/internal/models"
)

// scalarValue maps a leaf onto its tagged Datastore value.
// Both integer widths collapse to a single int64 variant.
func scalarValue(s models.Scalar, path string) (*datastorepb.Value, error) {
	switch s.Kind {
	case models.FloatKind:
		return &datastorepb.Value{ValueType: &datastorepb.Value_DoubleValue{DoubleValue: s.Float}}, nil
	case models.Int32Kind, models.Int64Kind:
		return &datastorepb.Value{ValueType: &datastorepb.Value_IntegerValue{IntegerValue: s.Int}}, nil
	case models.StringKind:
		return &datastorepb.Value{ValueType: &datastorepb.Value_StringValue{StringValue: s.Str}}, nil
	case models.BoolKind:
		return &datastorepb.Value{ValueType: &datastorepb.Value_BooleanValue{BooleanValue: s.Bool}}, nil
	case models.TimeKind:
		return &datastorepb.Value{ValueType: &datastorepb.Value_TimestampValue{TimestampValue: timestamppb.New(s.Time.UTC())}}, nil
	case models.NullKind:
		return nullValue(), nil
	case models.EntityKind:
		if s.Entity == nil {
			return nullValue(), nil
		}
		// Copy so the output tree never shares nodes with the caller's entity
		return entityValue(proto.Clone(s.Entity).(*datastorepb.Entity)), nil
	default:
		return nil, &errors.UnsupportedTypeError{Path: path, Type: s.Kind.String()}
	}
}

func nullValue() *datastorepb.Value {
	return &datastorepb.Value{ValueType: &datastorepb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}
}

func entityValue(e *datastorepb.Entity) *datastorepb.Value {
	return &datastorepb.Value{ValueType: &datastorepb.Value_EntityValue{EntityValue: e}}
}
