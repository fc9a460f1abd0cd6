// Package middleware decorates analytics event payloads with the resolved
// Marketing Cloud visitor ID, so downstream Adobe Analytics processing can
// stitch server-side events to the device visitor profile.
package middleware

import (
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/mcvid/mcvid/internal/pkg/log"
)

const (
	integrationsKey   = "integrations"
	adobeAnalyticsKey = "Adobe Analytics"
	visitorIDKey      = "marketingCloudVisitorId"
)

// VisitorIDSource yields the currently resolved visitor ID,
// or an empty string if no identifier is available yet.
type VisitorIDSource interface {
	VisitorID() string
}

type dependencies interface {
	Logger() log.Logger
}

// Decorator injects the visitor ID into event payloads.
type Decorator struct {
	logger log.Logger
	source VisitorIDSource
}

func NewDecorator(d dependencies, source VisitorIDSource) *Decorator {
	return &Decorator{logger: d.Logger(), source: source}
}

// Decorate returns a copy of the payload with the visitor ID set under
// integrations / Adobe Analytics / marketingCloudVisitorId.
//
// The original payload is returned unmodified when there is no visitor ID
// yet, when the Adobe Analytics integration is explicitly disabled, or when
// the integrations value has an unexpected shape. The caller-owned map is
// never mutated.
func (d *Decorator) Decorate(payload *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	if payload == nil {
		return nil
	}

	visitorID := d.source.VisitorID()
	if visitorID == "" {
		d.logger.Debug("visitor ID is not resolved yet, event not decorated")
		return payload
	}

	out := payload.Clone()

	var integrations *orderedmap.OrderedMap
	if value, found := out.Get(integrationsKey); found {
		m, ok := value.(*orderedmap.OrderedMap)
		if !ok {
			d.logger.Warnf(`unexpected type "%T" of the "%s" key, event not decorated`, value, integrationsKey)
			return payload
		}
		integrations = m
	} else {
		integrations = orderedmap.New()
		out.Set(integrationsKey, integrations)
	}

	var options *orderedmap.OrderedMap
	if value, found := integrations.Get(adobeAnalyticsKey); found {
		switch v := value.(type) {
		case bool:
			if !v {
				// The integration is explicitly disabled for this event
				return payload
			}
			options = orderedmap.New()
		case *orderedmap.OrderedMap:
			options = v
		default:
			d.logger.Warnf(`unexpected type "%T" of the "%s" integration, event not decorated`, value, adobeAnalyticsKey)
			return payload
		}
	} else {
		options = orderedmap.New()
	}

	options.Set(visitorIDKey, visitorID)
	integrations.Set(adobeAnalyticsKey, options)
	return out
}
