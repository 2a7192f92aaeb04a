// Package ecs provides ECS adapters for trellis.
package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ObjectEventType is the Donburi event type for trellis object lifecycle
// events. Subscribe to it in your ECS systems to react to objects being
// added, changed or removed.
var ObjectEventType = events.NewEventType[trellis.ObjectEvent]()

// SceneObject mirrors one canvas object inside the world.
type SceneObject struct {
	Handle   uint32
	DataType string
	DataID   string
	Center   trellis.ScenePoint
	Width    float64
	Height   float64
	Angle    float64
}

// SceneObjectComponent is attached to every mirrored entity.
var SceneObjectComponent = donburi.NewComponentType[SceneObject]()

// DonburiStore is an EntityStore backed by a Donburi world. Each canvas
// object gets an entity carrying SceneObjectComponent, kept in sync with
// the object's geometry; every event is also published to ObjectEventType.
type DonburiStore struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by world. Published events
// are queued until ObjectEventType.ProcessEvents runs.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, entities: make(map[uint32]donburi.Entity)}
}

// EmitEvent mirrors the event into the world.
func (s *DonburiStore) EmitEvent(event trellis.ObjectEvent) {
	switch event.Type {
	case trellis.EventObjectAdded:
		e := s.world.Create(SceneObjectComponent)
		s.entities[event.Handle] = e
		s.sync(e, event)
	case trellis.EventObjectModified:
		if e, ok := s.entities[event.Handle]; ok && s.world.Valid(e) {
			s.sync(e, event)
		}
	case trellis.EventObjectRemoved:
		if e, ok := s.entities[event.Handle]; ok {
			if s.world.Valid(e) {
				s.world.Remove(e)
			}
			delete(s.entities, event.Handle)
		}
	}
	ObjectEventType.Publish(s.world, event)
}

func (s *DonburiStore) sync(e donburi.Entity, event trellis.ObjectEvent) {
	SceneObjectComponent.SetValue(s.world.Entry(e), SceneObject{
		Handle:   event.Handle,
		DataType: event.DataType,
		DataID:   event.DataID,
		Center:   event.Center,
		Width:    event.Width,
		Height:   event.Height,
		Angle:    event.Angle,
	})
}

// Entity returns the entity mirroring the object with the given handle.
func (s *DonburiStore) Entity(handle uint32) (donburi.Entity, bool) {
	e, ok := s.entities[handle]
	return e, ok
}
