package container

import (
	"context"

	"github.com/specialistvlad/wiregrid/internal/config"
	"github.com/specialistvlad/wiregrid/internal/configurer"
)

// Capabilities an object may implement to take part in its own lifecycle.
type (
	// ConfigurationAware objects are called around property injection.
	// AfterConfiguration runs only once no property holds a placeholder.
	ConfigurationAware interface {
		BeforeConfiguration(ctx context.Context, cfg *config.Configuration)
		AfterConfiguration(ctx context.Context) error
	}

	// ContainerAware objects learn the container that built them.
	ContainerAware interface {
		SetContainer(c *Container)
	}

	// Service objects are started when their container starts.
	Service interface {
		Start(ctx context.Context) error
	}

	// Stopper objects release resources when their container stops.
	Stopper interface {
		Stop(ctx context.Context) error
	}

	// MessageReceiver objects take part in message dispatch. They report
	// whether they handled the message.
	MessageReceiver interface {
		ReceiveMessage(ctx context.Context, msg *Message) (bool, error)
	}
)

// Re-exported so that users of the container need a single import.
type (
	Configurable = configurer.Configurable
	ObjectAware  = configurer.ObjectAware
	Placeholder  = configurer.Placeholder
)
