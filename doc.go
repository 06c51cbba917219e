// Package gopick is a scoped dependency-injection engine.
//
// Instances are resolved through a tree of scopes. Each scope holds the bindings installed from
// modules and caches the singletons it owns. Construction never relies on reflection: every
// injectable type ships a generated Factory (and, when it has injectable members, a generated
// MemberInjector) registered by name in a Registry, usually from an init function:
//
//	func init() {
//		gopick.RegisterFactory[*Bar](gopick.DefaultRegistry, gopick.NewFactory(func(inj *gopick.Injector) (*Bar, error) {
//			return NewBar(), nil
//		}))
//	}
//
// A resolution walks from the calling scope up to the root and uses the nearest binding for the
// requested key. Without any binding, the Factory of the requested type is used directly
// (just-in-time binding) and rooted at the calling scope.
//
//	tree := gopick.NewTree()
//	root, _ := tree.OpenScope("app")
//	module := gopick.NewModule("app")
//	gopick.Bind[Repository](module).To(gopick.KeyOf[*sqlRepository]()).Singleton()
//	_ = root.Install(module)
//
//	repo, err := gopick.GetInstance[Repository](root.Injector())
//
// Values can also be requested as a Provider (fresh lookup on every call), a Lazy (resolved once,
// on first access) or a Future (resolved on another goroutine).
package gopick
