/*
Package sandbox runs a page's inline event handlers (oninput, onchange,
onblur) while a form is being filled.

Pages often react to a field change by rewriting other parts of the form:
a state dropdown is repopulated once the country is chosen, a hidden
section appears after a checkbox is ticked. The fill executor re-resolves
every locator for that reason, and this package supplies the reactions so
the behavior can be reproduced outside a browser.

# Runtime

Each Runtime owns a goja VM with require/process removed and a per-call
timeout enforced through vm.Interrupt. Handlers see:

  - this: the element the handler is attached to
  - event: {type, target, currentTarget}
  - document: getElementById, querySelector, querySelectorAll

Elements are goja dynamic objects backed directly by the *html.Node, so
writes to value, checked, selectedIndex, textContent or innerHTML land in
the document being filled. setTimeout callbacks are queued and run once the
handler returns.

# Listener

ScriptListener adapts a Pool of runtimes to dom.Listener:

	pool, _ := sandbox.NewPool(sandbox.DefaultConfig(), 2)
	notifier := dom.NewDispatcher(50*time.Millisecond, sandbox.NewScriptListener(pool, logger))
*/
package sandbox
