package middleware

import (
	"testing"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"

	"github.com/mcvid/mcvid/internal/pkg/log"
)

type staticSource string

func (s staticSource) VisitorID() string {
	return string(s)
}

type testDeps struct{}

func (testDeps) Logger() log.Logger {
	return log.NewNopLogger()
}

func TestDecorateNilPayload(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))
	assert.Nil(t, d.Decorate(nil))
}

func TestDecorateNoVisitorID(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource(""))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "event", Value: "Checkout"},
	})

	out := d.Decorate(payload)
	assert.Same(t, payload, out)
}

func TestDecorateEmptyPayload(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	out := d.Decorate(orderedmap.New())

	integrations, found := out.Get("integrations")
	assert.True(t, found)
	options, found := integrations.(*orderedmap.OrderedMap).Get("Adobe Analytics")
	assert.True(t, found)
	id, found := options.(*orderedmap.OrderedMap).Get("marketingCloudVisitorId")
	assert.True(t, found)
	assert.Equal(t, "visitorId1", id)
}

func TestDecorateKeepsExistingOptions(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "event", Value: "Checkout"},
		{Key: "integrations", Value: orderedmap.FromPairs([]orderedmap.Pair{
			{Key: "Adobe Analytics", Value: orderedmap.FromPairs([]orderedmap.Pair{
				{Key: "eVar1", Value: "a"},
			})},
			{Key: "Amplitude", Value: false},
		})},
	})

	out := d.Decorate(payload)

	integrations, _ := out.Get("integrations")
	options, _ := integrations.(*orderedmap.OrderedMap).Get("Adobe Analytics")
	optionsMap := options.(*orderedmap.OrderedMap)

	eVar, found := optionsMap.Get("eVar1")
	assert.True(t, found)
	assert.Equal(t, "a", eVar)
	id, found := optionsMap.Get("marketingCloudVisitorId")
	assert.True(t, found)
	assert.Equal(t, "visitorId1", id)

	// Other integrations are untouched
	amplitude, found := integrations.(*orderedmap.OrderedMap).Get("Amplitude")
	assert.True(t, found)
	assert.Equal(t, false, amplitude)
}

func TestDecorateIntegrationDisabled(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "integrations", Value: orderedmap.FromPairs([]orderedmap.Pair{
			{Key: "Adobe Analytics", Value: false},
		})},
	})

	out := d.Decorate(payload)
	assert.Same(t, payload, out)
}

func TestDecorateIntegrationEnabledFlag(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "integrations", Value: orderedmap.FromPairs([]orderedmap.Pair{
			{Key: "Adobe Analytics", Value: true},
		})},
	})

	out := d.Decorate(payload)

	integrations, _ := out.Get("integrations")
	options, _ := integrations.(*orderedmap.OrderedMap).Get("Adobe Analytics")
	id, found := options.(*orderedmap.OrderedMap).Get("marketingCloudVisitorId")
	assert.True(t, found)
	assert.Equal(t, "visitorId1", id)
}

func TestDecorateUnexpectedIntegrationsType(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "integrations", Value: "not a map"},
	})

	out := d.Decorate(payload)
	assert.Same(t, payload, out)
}

func TestDecorateDoesNotMutateCaller(t *testing.T) {
	t.Parallel()
	d := NewDecorator(testDeps{}, staticSource("visitorId1"))

	payload := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "integrations", Value: orderedmap.FromPairs([]orderedmap.Pair{
			{Key: "Adobe Analytics", Value: orderedmap.New()},
		})},
	})

	out := d.Decorate(payload)
	assert.NotSame(t, payload, out)

	integrations, _ := payload.Get("integrations")
	options, _ := integrations.(*orderedmap.OrderedMap).Get("Adobe Analytics")
	_, found := options.(*orderedmap.OrderedMap).Get("marketingCloudVisitorId")
	assert.False(t, found)
}
