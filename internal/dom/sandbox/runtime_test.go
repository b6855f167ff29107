package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
)

const page = `<html><body><form>
<select id="country" name="country" onchange="
  var st = document.getElementById('state');
  if (this.value === 'US') {
    st.innerHTML = '<option value=\'\'>-</option><option value=\'CA\'>California</option>';
  }
  st.disabled = false;
  console.log('country', this.value);
">
  <option value="">-</option>
  <option value="US">United States</option>
</select>
<select id="state" name="state" disabled><option value="">-</option></select>
<input id="email" name="email" oninput="document.querySelector('#echo').textContent = this.value.toUpperCase()">
<span id="echo"></span>
</form></body></html>`

func mustRuntime(t *testing.T, cfg Config) *Runtime {
	t.Helper()
	rt, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func bind(doc *dom.Document, id string, typ dom.EventType) Binding {
	n := doc.ElementByID(id)
	return Binding{Doc: doc, This: n, Event: dom.Event{Type: typ, Target: n, Current: n}}
}

func TestRunReturnsValue(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	res, err := rt.Run(context.Background(), "return event.type + ':' + this.id", bind(doc, "email", dom.EventInput))
	require.NoError(t, err)
	assert.Equal(t, "input:email", res.Value)
}

func TestHandlerRepopulatesDependentSelect(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	country := doc.ElementByID("country")
	dom.SetValue(country, "US")
	handler := dom.AttrOr(country, "onchange", "")

	res, err := rt.Run(context.Background(), handler, bind(doc, "country", dom.EventChange))
	require.NoError(t, err)

	state := doc.ElementByID("state")
	assert.False(t, dom.IsDisabled(state))
	opts := dom.Options(state)
	require.Len(t, opts, 2)
	assert.Equal(t, "California", opts[1].Text)

	require.Len(t, res.Console, 1)
	assert.Equal(t, "country US", res.Console[0].Message)
}

func TestHandlerWritesThroughToDocument(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	dom.SetValue(doc.ElementByID("email"), "jane@example.com")
	handler := dom.AttrOr(doc.ElementByID("email"), "oninput", "")

	_, err := rt.Run(context.Background(), handler, bind(doc, "email", dom.EventInput))
	require.NoError(t, err)
	assert.Equal(t, "JANE@EXAMPLE.COM", dom.TextContent(doc.ElementByID("echo")))
}

func TestTimersRunAfterHandler(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	script := `setTimeout(function() { document.getElementById('echo').textContent = 'late'; }, 10);
	           document.getElementById('echo').textContent = 'early';`
	_, err := rt.Run(context.Background(), script, bind(doc, "email", dom.EventBlur))
	require.NoError(t, err)
	assert.Equal(t, "late", dom.TextContent(doc.ElementByID("echo")))
}

func TestRunTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	rt := mustRuntime(t, cfg)
	doc := dom.MustParse(page)

	_, err := rt.Run(context.Background(), "while (true) {}", bind(doc, "email", dom.EventInput))
	assert.ErrorIs(t, err, ErrTimeout)

	// The VM stays usable after an interrupt.
	res, err := rt.Run(context.Background(), "return 1 + 1", bind(doc, "email", dom.EventInput))
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Value)
}

func TestRunThrows(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	_, err := rt.Run(context.Background(), "throw new Error('nope')", bind(doc, "email", dom.EventInput))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestDangerousGlobalsRemoved(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	res, err := rt.Run(context.Background(), "return typeof require + ',' + typeof process", bind(doc, "email", dom.EventInput))
	require.NoError(t, err)
	assert.Equal(t, "undefined,undefined", res.Value)
}

func TestScriptListenerThroughDispatcher(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)
	defer pool.Close()

	doc := dom.MustParse(page)
	country := doc.ElementByID("country")
	dom.SetValue(country, "US")

	d := dom.NewDispatcher(0, NewScriptListener(pool, nil))
	require.NoError(t, d.Notify(context.Background(), doc, country))

	assert.Len(t, dom.Options(doc.ElementByID("state")), 2)
	assert.Equal(t, PoolStats{Size: 1, Idle: 1}, pool.Stats())
}

func TestScriptListenerIgnoresElementsWithoutHandlers(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)
	defer pool.Close()

	doc := dom.MustParse(page)
	echo := doc.ElementByID("echo")
	l := NewScriptListener(pool, nil)

	err = l.HandleEvent(context.Background(), doc, dom.Event{Type: dom.EventInput, Target: echo, Current: echo})
	assert.NoError(t, err)
}

func TestAppendChildMovesNode(t *testing.T) {
	rt := mustRuntime(t, DefaultConfig())
	doc := dom.MustParse(page)

	script := `var o = document.createElement('option');
	           o.value = 'TX'; o.textContent = 'Texas';
	           document.getElementById('state').appendChild(o);`
	_, err := rt.Run(context.Background(), script, bind(doc, "email", dom.EventChange))
	require.NoError(t, err)

	opts := dom.Options(doc.ElementByID("state"))
	require.Len(t, opts, 2)
	assert.Equal(t, "TX", opts[1].Value)
	assert.Equal(t, html.ElementNode, opts[1].Node.Type)
}

func TestPoolClosed(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.True(t, pool.Stats().Closed)
	assert.NoError(t, pool.Close())
}

func TestPoolCloseWakesWaiters(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)

	rt, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats().InUse)

	waited := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background())
		waited <- err
	}()

	require.NoError(t, pool.Close())
	assert.ErrorIs(t, <-waited, ErrPoolClosed)
	// runtimes borrowed before Close are closed on release
	assert.NoError(t, pool.Release(rt))
}

func TestPoolAcquireTimeout(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)
	defer pool.Close()

	rt, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(rt)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
