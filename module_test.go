package gopick

import (
	"context"
	htmltemplate "html/template"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule(t *testing.T) {
	t.Run("it should bind a type to itself by default", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")

		// WHEN
		Bind[*Bar](module)

		// THEN
		bindings := module.Bindings()
		require.Len(t, bindings, 1)
		assert.Equal(t, ModeClass, bindings[0].Mode())
		assert.Equal(t, KeyOf[*Bar](), bindings[0].Key())
		assert.Equal(t, KeyOf[*Bar](), bindings[0].Target())
		assert.False(t, bindings[0].IsSingleton())
	})

	t.Run("it should keep the last registration of a key", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")
		first := Bind[Engine](module).To(KeyOf[*dieselEngine]())

		// WHEN
		Bind[Engine](module).To(KeyOf[*electricEngine]())
		first.Singleton()

		// THEN
		bindings := module.Bindings()
		require.Len(t, bindings, 1)
		assert.Equal(t, KeyOf[*electricEngine](), bindings[0].Target())
		assert.False(t, bindings[0].IsSingleton())
	})

	t.Run("it should resolve the last registration of a key", func(t *testing.T) {
		// GIVEN
		tree := newTestTree(newTestRegistry(&counter{}))
		root, _ := tree.OpenScope("root")
		module := NewModule("app")
		Bind[Engine](module).To(KeyOf[*dieselEngine]())
		Bind[Engine](module).To(KeyOf[*electricEngine]())
		require.NoError(t, root.Install(module))

		// WHEN
		engine, err := GetInstance[Engine](root.Injector())

		// THEN
		require.NoError(t, err)
		assert.IsType(t, &electricEngine{}, engine)
	})

	t.Run("it should list bindings in registration order", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")

		// WHEN
		Bind[*Bar](module)
		Bind[Engine](module, Named("diesel")).To(KeyOf[*dieselEngine]())
		Bind[*Foo](module)
		Bind[*Bar](module).Singleton()

		// THEN
		bindings := module.Bindings()
		require.Len(t, bindings, 3)
		assert.Equal(t, 3, module.Len())
		assert.Equal(t, KeyOf[*Bar](), bindings[0].Key())
		assert.True(t, bindings[0].IsSingleton())
		assert.Equal(t, KeyOf[Engine](Named("diesel")), bindings[1].Key())
		assert.Equal(t, KeyOf[*Foo](), bindings[2].Key())
	})

	t.Run("it should hand out snapshots", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")
		builder := Bind[*Bar](module)
		snapshot := module.Bindings()

		// WHEN
		builder.Singleton()

		// THEN
		assert.False(t, snapshot[0].IsSingleton())
		assert.True(t, module.Bindings()[0].IsSingleton())
	})

	t.Run("it should keep the last payload selected", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")
		bar := &Bar{}

		// WHEN
		Bind[*Bar](module).ToProvider(KeyOf[*tokenProvider]()).ToInstance(bar)

		// THEN
		b := module.Bindings()[0]
		assert.Equal(t, ModeInstance, b.Mode())
		assert.Same(t, bar, b.Instance())
	})

	t.Run("it should render bindings", func(t *testing.T) {
		// GIVEN
		module := NewModule("app")
		Bind[Engine](module).To(KeyOf[*dieselEngine]()).Singleton()
		Bind[Token](module, Named("api")).ToInstance("secret").ProvidesSingleton()

		// WHEN
		bindings := module.Bindings()

		// THEN
		assert.Equal(t,
			"github.com/a-peyrard/gopick.Engine -> class(*github.com/a-peyrard/gopick.dieselEngine) [singleton]",
			bindings[0].String(),
		)
		assert.Equal(t,
			"github.com/a-peyrard/gopick.Token@api -> instance [provides singleton]",
			bindings[1].String(),
		)
	})
}

func TestKey(t *testing.T) {
	t.Run("it should tell qualified keys apart", func(t *testing.T) {
		// GIVEN / WHEN
		plain := KeyOf[*Bar]()
		named := KeyOf[*Bar](Named("special"))

		// THEN
		assert.NotEqual(t, plain, named)
		assert.False(t, plain.IsQualified())
		assert.True(t, named.IsQualified())
		assert.Equal(t, "special", named.Name())
		assert.Equal(t, plain.Type(), named.Type())
	})

	t.Run("it should render the qualified type name", func(t *testing.T) {
		// GIVEN
		cases := map[string]Key{
			"*github.com/a-peyrard/gopick.Bar":           KeyOf[*Bar](),
			"github.com/a-peyrard/gopick.Engine@primary": KeyOf[Engine](Named("primary")),
			"[]*github.com/a-peyrard/gopick.Bar":         KeyOf[[]*Bar](),
			"string":                                     KeyOf[string](),
			"<nil>":                                      {},
		}

		for expected, key := range cases {
			// WHEN
			rendered := key.String()

			// THEN
			assert.Equal(t, expected, rendered)
		}
	})

	t.Run("it should qualify named types nested in composite types", func(t *testing.T) {
		// GIVEN
		cases := map[string]Key{
			"map[string]*text/template.Template":                                         KeyOf[map[string]*template.Template](),
			"map[string]*html/template.Template":                                         KeyOf[map[string]*htmltemplate.Template](),
			"func(context.Context, ...string) (*github.com/a-peyrard/gopick.Bar, error)": KeyOf[func(context.Context, ...string) (*Bar, error)](),
			"<-chan *github.com/a-peyrard/gopick.Bar":                                    KeyOf[<-chan *Bar](),
			"[2]github.com/a-peyrard/gopick.Engine":                                      KeyOf[[2]Engine](),
			"struct { Page *html/template.Template }":                                    KeyOf[struct{ Page *htmltemplate.Template }](),
		}

		for expected, key := range cases {
			// WHEN
			rendered := key.String()

			// THEN
			assert.Equal(t, expected, rendered)
		}
	})

	t.Run("it should register distinct factories for same named types of distinct packages", func(t *testing.T) {
		// GIVEN
		r := NewRegistry()
		RegisterFactory[map[string]*template.Template](r, NewFactory(func(*Injector) (map[string]*template.Template, error) {
			return map[string]*template.Template{"text": nil}, nil
		}))
		RegisterFactory[map[string]*htmltemplate.Template](r, NewFactory(func(*Injector) (map[string]*htmltemplate.Template, error) {
			return map[string]*htmltemplate.Template{"html": nil}, nil
		}))
		root, _ := newTestTree(r).OpenScope("root")

		// WHEN
		texts, err1 := GetInstance[map[string]*template.Template](root.Injector())
		pages, err2 := GetInstance[map[string]*htmltemplate.Template](root.Injector())

		// THEN
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, FactoryName(TypeOf[map[string]*template.Template]()), FactoryName(TypeOf[map[string]*htmltemplate.Template]()))
		assert.Contains(t, texts, "text")
		assert.Contains(t, pages, "html")
	})
}
