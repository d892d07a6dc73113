package codec_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec/adt"
	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

type Suit int

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

func (s Suit) EnumLabels() []string { return []string{"Clubs", "Diamonds", "Hearts", "Spades"} }
func (s Suit) EnumIndex() int       { return int(s) }

type Card struct {
	Rank int32
	Suit Suit
	Note *string
}

func buildEngine(t *testing.T, sample interface{}) (*codec.Engine, reflect.Type) {
	t.Helper()
	rt := reflect.TypeOf(sample)
	typ, table, err := schema.Analyze(rt)
	require.NoError(t, err)
	return codec.NewEngine(typ, table), rt
}

func TestRecordRoundTrip(t *testing.T) {
	eng, _ := buildEngine(t, Card{})

	note := "trump"
	in := Card{Rank: 7, Suit: SuitHearts, Note: &note}

	buf := wire.NewBuffer(256)
	require.NoError(t, eng.Write(buf, reflect.ValueOf(in)))
	size, err := eng.Size(reflect.ValueOf(in))
	require.NoError(t, err)
	require.Equal(t, buf.Position(), size)

	buf.Flip()
	out, err := eng.Read(buf, codec.Strict)
	require.NoError(t, err)

	got := out.Interface().(Card)
	require.Equal(t, in.Rank, got.Rank)
	require.Equal(t, in.Suit, got.Suit)
	require.NotNil(t, got.Note)
	require.Equal(t, note, *got.Note)
}

func TestRecordRoundTripNilOptionalField(t *testing.T) {
	eng, _ := buildEngine(t, Card{})
	in := Card{Rank: 2, Suit: SuitClubs}

	buf := wire.NewBuffer(256)
	require.NoError(t, eng.Write(buf, reflect.ValueOf(in)))
	buf.Flip()

	out, err := eng.Read(buf, codec.Strict)
	require.NoError(t, err)
	got := out.Interface().(Card)
	require.Nil(t, got.Note)
}

type Hand struct {
	Cards adt.Array[int32]
	Bids  adt.OrderedMap[string, int32]
	Bonus adt.Optional[float64]
}

func TestCollectionsRoundTrip(t *testing.T) {
	eng, _ := buildEngine(t, Hand{})

	bids := adt.NewOrderedMap[string, int32]()
	bids.Set("alice", 3)
	bids.Set("bob", 5)

	in := Hand{
		Cards: adt.Array[int32]{1, 2, 3},
		Bids:  *bids,
		Bonus: adt.Some(1.5),
	}

	buf := wire.NewBuffer(256)
	require.NoError(t, eng.Write(buf, reflect.ValueOf(in)))
	buf.Flip()

	out, err := eng.Read(buf, codec.Strict)
	require.NoError(t, err)
	got := out.Interface().(Hand)

	require.Equal(t, []int32{1, 2, 3}, []int32(got.Cards))
	require.Equal(t, 2, got.Bids.Len())
	v, ok := got.Bids.Get("bob")
	require.True(t, ok)
	require.Equal(t, int32(5), v)
	require.True(t, got.Bonus.IsPresent())
	require.Equal(t, 1.5, got.Bonus.MustGet())
}

type Shape interface{ isShape() }

type Circle struct{ Radius float64 }

func (*Circle) isShape() {}

type Square struct{ Side float64 }

func (*Square) isShape() {}

type Drawing struct {
	Title  string
	Shapes []Shape
}

func TestPolymorphicDispatchRoundTrip(t *testing.T) {
	schema.RegisterUnion((*Shape)(nil), (*Circle)(nil), (*Square)(nil))
	eng, _ := buildEngine(t, Drawing{})

	in := Drawing{
		Title:  "mixed",
		Shapes: []Shape{&Circle{Radius: 2.5}, &Square{Side: 1.0}},
	}

	buf := wire.NewBuffer(512)
	require.NoError(t, eng.Write(buf, reflect.ValueOf(in)))
	buf.Flip()

	out, err := eng.Read(buf, codec.Strict)
	require.NoError(t, err)
	got := out.Interface().(Drawing)

	require.Equal(t, "mixed", got.Title)
	require.Len(t, got.Shapes, 2)
	c, ok := got.Shapes[0].(*Circle)
	require.True(t, ok)
	require.Equal(t, 2.5, c.Radius)
	sq, ok := got.Shapes[1].(*Square)
	require.True(t, ok)
	require.Equal(t, 1.0, sq.Side)
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
)

func (s Severity) EnumLabels() []string { return []string{"Info", "Warn"} }
func (s Severity) EnumIndex() int       { return int(s) }

// Status is a mixed union: Outage is a record leaf, Severity is an enum
// leaf, so the tie-breaking rule cannot collapse it onto either Record
// or Enum and it keeps the Polymorphic Dispatcher's Interface envelope.
type Status interface{ isStatus() }

type Outage struct{ Reason string }

func (*Outage) isStatus() {}

func (Severity) isStatus() {}

type Report struct {
	Current Status
}

func TestMixedUnionRoundTrip(t *testing.T) {
	schema.RegisterUnion((*Status)(nil), (*Outage)(nil), Severity(0))
	eng, _ := buildEngine(t, Report{})

	cases := []Status{&Outage{Reason: "power"}, Severity(SeverityWarn)}
	for _, in := range cases {
		buf := wire.NewBuffer(256)
		require.NoError(t, eng.Write(buf, reflect.ValueOf(Report{Current: in})))
		size, err := eng.Size(reflect.ValueOf(Report{Current: in}))
		require.NoError(t, err)
		require.Equal(t, buf.Position(), size)

		buf.Flip()
		out, err := eng.Read(buf, codec.Strict)
		require.NoError(t, err)
		got := out.Interface().(Report)
		require.Equal(t, in, got.Current)
	}
}

type Ring struct {
	Name string
	Next *Ring
}

func TestCycleDetected(t *testing.T) {
	eng, _ := buildEngine(t, Ring{})

	a := &Ring{Name: "a"}
	b := &Ring{Name: "b", Next: a}
	a.Next = b

	buf := wire.NewBuffer(1024)
	err := eng.Write(buf, reflect.ValueOf(*a))
	require.ErrorIs(t, err, codec.ErrCycleDetected)
}
