// Package reworm is an external state container for component-tree UIs.
//
// Independent parts of a UI read and write named, shared stores without
// threading values through every layer, and only the consumers of a store
// are told when it changes.
//
// # Core Types
//
// Container is the composition root. It owns a Registry of initial values,
// an Emitter that broadcasts updates, and the live value of every store:
//
//	c := reworm.NewContainer(reworm.WithLogger(logger))
//	user := c.Create("user", value.Record{"name": value.String("John"), "age": value.Int(30)})
//
// Store is the handle returned by Create (or Use for an existing name):
//
//	user.Get(func(v value.Value) any { return render(v) })
//	user.Set(value.Record{"name": value.String("Michael")}) // patches name, keeps age
//	user.Update(func(v value.Value) value.Value { ... })    // functional update
//
//	names := user.Select(reworm.Field("list"))
//	names(func(list value.Value) any { ... })
//
//	stop := user.Subscribe(func(next value.Value) { ... })
//	defer stop()
//
// # Update Propagation
//
// Set runs the merge policy of package value, compares the result with the
// current value and, only when it differs, broadcasts it synchronously to
// every listener before returning. A write that changes nothing notifies
// nobody.
//
// Listeners run in registration order. A listener may subscribe or
// unsubscribe (itself or others) while a broadcast is in progress: the
// broadcast works on a snapshot taken when it started, listeners removed
// mid-broadcast are not called again, and listeners added mid-broadcast
// first hear the next one. A panicking listener is recovered, logged and
// reported to the Observer; the remaining listeners still run.
//
// # Binding Layer
//
// Rendering integrations (see package binding) need three calls: read
// Registry().Initial() once at mount, Emitter().Subscribe to follow
// updates, and Emitter().Unsubscribe at teardown.
package reworm
