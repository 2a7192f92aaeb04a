// Package ecs provides ECS adapters for trellis's object lifecycle events.
//
// The primary adapter is [NewDonburiStore], which mirrors canvas objects
// into a [Donburi] world as entities and publishes every added, modified
// and removed event as a typed event. Subscribe to [ObjectEventType] in
// your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	canvas.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
