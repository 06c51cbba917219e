package gopick

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// The artifacts below are written the way the generator emits them: one Factory per injectable
// type, one MemberInjector per type with injectable members.

type (
	Bar struct {
		serial int64
	}

	// Foo has no constructor parameter, only an injectable member.
	Foo struct {
		Bar *Bar // @inject
	}

	Engine interface {
		Start() string
	}

	dieselEngine struct {
		serial int64
	}

	electricEngine struct{}

	Car struct {
		Engine Engine
	}

	// Connection is closed with the scope caching it.
	Connection struct {
		closed   atomic.Bool
		closeErr error
	}

	// Base has its own injectable member, Service embeds it.
	Base struct {
		Bar   *Bar // @inject
		trace *[]string
	}

	Service struct {
		*Base
		Foo *Foo // @inject
	}

	Chicken struct{ Egg *Egg }
	Egg     struct{ Chicken *Chicken }

	Token string

	tokenProvider struct {
		counter *atomic.Int64
	}

	// counter records how many instances a factory built.
	counter struct {
		calls atomic.Int64
	}
)

func (e *dieselEngine) Start() string {
	return "vroom"
}

func (e *electricEngine) Start() string {
	return "bzzz"
}

func (c *Connection) Close() error {
	c.closed.Store(true)
	return c.closeErr
}

func (p *tokenProvider) Get() (Token, error) {
	return Token(fmt.Sprintf("token-%d", p.counter.Add(1))), nil
}

func (c *counter) next() int64 {
	return c.calls.Add(1)
}

func (c *counter) count() int64 {
	return c.calls.Load()
}

func barFactory(c *counter) Factory {
	return NewFactory(func(*Injector) (*Bar, error) {
		return &Bar{serial: c.next()}, nil
	})
}

func singletonBarFactory(c *counter) Factory {
	return NewFactory(func(*Injector) (*Bar, error) {
		return &Bar{serial: c.next()}, nil
	}, AsSingleton())
}

func fooFactory() Factory {
	return NewFactory(func(*Injector) (*Foo, error) {
		return &Foo{}, nil
	})
}

var fooMemberInjector = NewMemberInjector(func(target *Foo, injector *Injector) error {
	bar, err := GetInstance[*Bar](injector)
	if err != nil {
		return err
	}
	target.Bar = bar
	return nil
})

func carFactory() Factory {
	return NewFactory(func(injector *Injector) (*Car, error) {
		engine, err := GetInstance[Engine](injector)
		if err != nil {
			return nil, err
		}
		return &Car{Engine: engine}, nil
	})
}

var errEngineBroken = errors.New("engine is broken")

// newTestRegistry registers the artifacts of the test types in a fresh registry.
func newTestRegistry(bars *counter) *Registry {
	r := NewRegistry()
	RegisterFactory[*Bar](r, barFactory(bars))
	RegisterFactory[*Foo](r, fooFactory())
	RegisterMemberInjector[*Foo](r, fooMemberInjector)
	RegisterFactory[*Car](r, carFactory())
	RegisterFactory[*dieselEngine](r, NewFactory(func(*Injector) (*dieselEngine, error) {
		return &dieselEngine{}, nil
	}))
	RegisterFactory[*electricEngine](r, NewFactory(func(*Injector) (*electricEngine, error) {
		return &electricEngine{}, nil
	}))
	return r
}

func newTestTree(r *Registry) *Tree {
	return NewTree(WithRegistry(r))
}

// carProvider assembles cars around the engine it was built with.
type carProvider struct {
	engine Engine
}

func (p *carProvider) Get() (*Car, error) {
	return &Car{Engine: p.engine}, nil
}

func carProviderFactory() Factory {
	return NewFactory(func(injector *Injector) (*carProvider, error) {
		engine, err := GetInstance[Engine](injector)
		if err != nil {
			return nil, err
		}
		return &carProvider{engine: engine}, nil
	})
}
