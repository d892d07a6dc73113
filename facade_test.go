package sumcodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec"
	"github.com/sumcodec/sumcodec/wire"
)

type Address struct {
	City    string
	ZipCode int32
}

type Person struct {
	Name    string
	Age     int32
	Address Address
}

func TestFacadeRoundTrip(t *testing.T) {
	c, err := sumcodec.ForRoot(Person{})
	require.NoError(t, err)

	in := Person{Name: "Ada", Age: 36, Address: Address{City: "London", ZipCode: 1010}}

	size, err := c.SizeOf(in)
	require.NoError(t, err)

	buf := wire.NewBuffer(size)
	require.NoError(t, c.Serialize(buf, in))
	require.Equal(t, size, buf.Position())

	buf.Flip()
	var out Person
	require.NoError(t, c.Deserialize(buf, &out))
	require.Equal(t, in, out)
}

func TestForRootCachesByType(t *testing.T) {
	c1, err := sumcodec.ForRoot(Person{})
	require.NoError(t, err)
	c2, err := sumcodec.ForRoot(Person{})
	require.NoError(t, err)

	in := Person{Name: "Grace", Age: 40}
	size, err := c1.SizeOf(in)
	require.NoError(t, err)
	buf := wire.NewBuffer(size)
	require.NoError(t, c2.Serialize(buf, in))
}

func TestSerializeManyDeserializeMany(t *testing.T) {
	c, err := sumcodec.ForRoot(Address{})
	require.NoError(t, err)

	addrs := []interface{}{
		Address{City: "Paris", ZipCode: 75000},
		Address{City: "Berlin", ZipCode: 10115},
	}

	buf := wire.NewBuffer(1024)
	require.NoError(t, c.SerializeMany(buf, addrs))
	buf.Flip()

	out, err := c.DeserializeMany(buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, addrs[0].(Address), *(out[0].(*Address)))
}

func TestDeserializeNilOutIsInvalidType(t *testing.T) {
	c, err := sumcodec.ForRoot(Address{})
	require.NoError(t, err)
	buf := wire.NewBuffer(16)
	err = c.Deserialize(buf, (*Address)(nil))
	require.ErrorIs(t, err, sumcodec.InvalidType)
}
