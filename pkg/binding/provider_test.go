package binding

import (
	"strings"
	"testing"

	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// renderList renders a sequence of strings as <div> elements.
func renderList(v value.Value) any {
	var b strings.Builder
	seq, _ := v.(value.Sequence)
	for _, item := range seq {
		b.WriteString("<div>")
		b.WriteString(item.(value.Primitive).String())
		b.WriteString("</div>")
	}
	return b.String()
}

func renderText(v value.Value) any {
	if p, ok := v.(value.Primitive); ok {
		return p.String()
	}
	return ""
}

func TestProvider_RendersInitialState(t *testing.T) {
	c := reworm.NewContainer()
	c.Create("userStore", value.Strings("John", "Michael"))

	p := Mount(c)
	defer p.Unmount()

	users := p.Consume("userStore", reworm.Identity(), renderList)
	if users.Output() != "<div>John</div><div>Michael</div>" {
		t.Errorf("output = %v", users.Output())
	}
	if users.Renders() != 1 {
		t.Errorf("renders = %d", users.Renders())
	}
}

func TestProvider_Selectors(t *testing.T) {
	c := reworm.NewContainer()
	c.Create("userStore", value.Record{"list": value.Strings("John", "Michael")})

	p := Mount(c)
	defer p.Unmount()

	users := p.Consume("userStore", reworm.Field("list"), renderList)
	john := p.Consume("userStore", reworm.MustPath("list.0"), renderText)

	got := users.Output().(string) + john.Output().(string)
	if got != "<div>John</div><div>Michael</div>John" {
		t.Errorf("output = %q", got)
	}
}

func TestProvider_ModifyRecordState(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.Record{"name": value.String("John")})

	p := Mount(c)
	defer p.Unmount()

	name := p.Consume("userStore", reworm.Field("name"), renderText)

	if err := user.Set(value.Record{"name": value.String("Peter")}); err != nil {
		t.Fatal(err)
	}
	if err := c.Use("userStore").Set(value.Record{"name": value.String("Michael")}); err != nil {
		t.Fatal(err)
	}

	if name.Output() != "Michael" {
		t.Errorf("output = %v, want Michael", name.Output())
	}
	if !value.Equal(p.State("userStore"), value.Record{"name": value.String("Michael")}) {
		t.Errorf("state = %s", value.Format(p.State("userStore")))
	}
}

func TestProvider_ModifyPrimitiveState(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.String("John"))

	p := Mount(c)
	defer p.Unmount()

	label := p.Consume("userStore", reworm.Identity(), renderText)
	input := p.Consume("userStore", reworm.Identity(), func(v value.Value) any {
		return `<input type="text" value="` + renderText(v).(string) + `">`
	})

	if err := user.Set(value.String("Michael")); err != nil {
		t.Fatal(err)
	}

	html := "<div><div>" + label.Output().(string) + "</div>" + input.Output().(string) + "</div>"
	want := `<div><div>Michael</div><input type="text" value="Michael"></div>`
	if html != want {
		t.Errorf("html = %s, want %s", html, want)
	}
}

func TestProvider_SelectorScopedRerender(t *testing.T) {
	c := reworm.NewContainer()
	s := c.Create("app", value.Record{
		"list": value.Strings("John"),
		"name": value.String("x"),
	})

	p := Mount(c)
	defer p.Unmount()

	list := p.Consume("app", reworm.Field("list"), renderList)
	name := p.Consume("app", reworm.Field("name"), renderText)

	if err := s.Set(value.Record{"name": value.String("y")}); err != nil {
		t.Fatal(err)
	}

	if list.Renders() != 1 {
		t.Errorf("list consumer re-rendered %d times for an unrelated field", list.Renders()-1)
	}
	if name.Renders() != 2 || name.Output() != "y" {
		t.Errorf("name consumer renders = %d output = %v", name.Renders(), name.Output())
	}
}

func TestProvider_OtherStoresDoNotRerender(t *testing.T) {
	c := reworm.NewContainer()
	c.Create("a", value.Int(0))
	b := c.Create("b", value.Int(0))

	p := Mount(c)
	defer p.Unmount()

	consumer := p.Consume("a", reworm.Identity(), renderText)
	if err := b.Set(value.Int(1)); err != nil {
		t.Fatal(err)
	}
	if consumer.Renders() != 1 {
		t.Errorf("consumer of a re-rendered for b: %d", consumer.Renders())
	}
}

func TestProvider_SeesWritesBeforeMount(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.String("John"))
	if err := user.Set(value.String("Michael")); err != nil {
		t.Fatal(err)
	}

	p := Mount(c)
	defer p.Unmount()

	out := p.Consume("userStore", reworm.Identity(), func(v value.Value) any {
		return "<div>" + renderText(v).(string) + "</div>"
	})
	if out.Output() != "<div>Michael</div>" {
		t.Errorf("output = %v", out.Output())
	}
}

func TestProvider_ActivatesStores(t *testing.T) {
	c := reworm.NewContainer()
	s := c.Create("userStore", value.String("John"))
	if s.Phase() != reworm.PhaseInitialized {
		t.Fatalf("phase = %v", s.Phase())
	}

	p := Mount(c)
	defer p.Unmount()

	if s.Phase() != reworm.PhaseActive {
		t.Errorf("phase after mount = %v", s.Phase())
	}
}

func TestProvider_Unmount(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.String("John"))

	p := Mount(c)
	consumer := p.Consume("userStore", reworm.Identity(), renderText)

	p.Unmount()
	p.Unmount()
	if p.Mounted() {
		t.Error("provider still mounted")
	}
	if c.Emitter().Len() != 0 {
		t.Errorf("emitter holds %d listeners after unmount", c.Emitter().Len())
	}

	if err := user.Set(value.String("Michael")); err != nil {
		t.Fatal(err)
	}
	if consumer.Output() != "John" {
		t.Errorf("unmounted consumer re-rendered to %v", consumer.Output())
	}
	if !value.Equal(user.Value(), value.String("Michael")) {
		t.Error("store stopped accepting writes after unmount")
	}
}

func TestConsumer_Release(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.String("John"))

	p := Mount(c)
	defer p.Unmount()

	kept := p.Consume("userStore", reworm.Identity(), renderText)
	released := p.Consume("userStore", reworm.Identity(), renderText)
	released.Release()

	if err := user.Set(value.String("Michael")); err != nil {
		t.Fatal(err)
	}
	if released.Renders() != 1 {
		t.Errorf("released consumer rendered %d times", released.Renders())
	}
	if kept.Output() != "Michael" {
		t.Errorf("kept consumer output = %v", kept.Output())
	}
	if kept.Store() != "userStore" {
		t.Errorf("Store = %q", kept.Store())
	}
}

func TestProvider_SubscribeAlongside(t *testing.T) {
	c := reworm.NewContainer()
	user := c.Create("userStore", value.String("John"))

	p := Mount(c)
	defer p.Unmount()

	greeting := ""
	defer user.Subscribe(func(v value.Value) {
		greeting = "Hello " + renderText(v).(string)
	})()

	if err := user.Set(value.String("Michael")); err != nil {
		t.Fatal(err)
	}
	if greeting != "Hello Michael" {
		t.Errorf("greeting = %q", greeting)
	}
}

func TestProvider_FollowsSetFromEarlierListener(t *testing.T) {
	c := reworm.NewContainer()
	counter := c.Create("counter", value.Int(0))

	// Registered before the provider: clamps every write above 5.
	defer counter.Subscribe(func(v value.Value) {
		if n, _ := v.(value.Primitive).AsInt(); n > 5 {
			if err := counter.Set(value.Int(5)); err != nil {
				t.Errorf("clamp: %v", err)
			}
		}
	})()

	p := Mount(c)
	defer p.Unmount()
	consumer := p.Consume("counter", reworm.Identity(), func(v value.Value) any {
		return value.Format(v)
	})

	if err := counter.Set(value.Int(9)); err != nil {
		t.Fatal(err)
	}

	live := counter.Value()
	if !value.Equal(live, value.Int(5)) {
		t.Fatalf("live = %s, want 5", value.Format(live))
	}
	if got := p.State("counter"); !value.Equal(got, live) {
		t.Errorf("provider state = %s, live = %s", value.Format(got), value.Format(live))
	}
	if consumer.Output() != "5" {
		t.Errorf("consumer output = %v, want 5", consumer.Output())
	}
}
