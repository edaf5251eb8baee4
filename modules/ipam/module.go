package ipam

import (
	"github.com/moimran/netdata/modules/ipam/presentation/components"
	"github.com/moimran/netdata/modules/ipam/presentation/controllers"
	"github.com/moimran/netdata/pkg/application"
	"github.com/moimran/netdata/pkg/crud"
	"github.com/moimran/netdata/pkg/ipamapi"
)

// BasePath is the mount point of the admin UI.
const BasePath = "/ipam"

type Module struct {
	client *ipamapi.Client
}

func NewModule(client *ipamapi.Client) *Module {
	return &Module{client: client}
}

// Register wires one controller per entity type onto the application, all
// sharing one reference cache and one renderer. The cache subscribes to
// entity-changed events so a save in one form refreshes every dependent
// picker and listing.
func (m *Module) Register(app application.Application) error {
	registry := BuildRegistry()
	refs := crud.NewReferenceCache(m.client, app.Logger())
	renderer := crud.NewRenderer(Overrides()...)
	theme := components.DefaultTheme()
	nav := components.NavItems(registry, BasePath)

	app.EventPublisher().Subscribe(func(event controllers.EntityChangedEvent) {
		refs.Invalidate(event.Type)
	})

	for _, t := range registry.Types() {
		schema, err := registry.Schema(t)
		if err != nil {
			return err
		}
		app.RegisterControllers(controllers.NewEntityController(controllers.EntityControllerOptions{
			BasePath:   BasePath,
			Schema:     schema,
			Registry:   registry,
			API:        m.client,
			Refs:       refs,
			Renderer:   renderer,
			Theme:      theme,
			Nav:        nav,
			Publisher:  app.EventPublisher(),
			Defaults:   Defaults(schema),
			Validators: Validators(t, refs),
		}))
	}
	return nil
}

func (m *Module) Name() string {
	return "ipam"
}
