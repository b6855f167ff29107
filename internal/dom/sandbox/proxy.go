package sandbox

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/formclip/internal/dom"
)

// proxyFactory builds JS views of document nodes for one handler run.
type proxyFactory struct {
	vm      *goja.Runtime
	doc     *dom.Document
	created map[*goja.Object]*html.Node
}

func newProxyFactory(vm *goja.Runtime, doc *dom.Document) *proxyFactory {
	return &proxyFactory{vm: vm, doc: doc, created: make(map[*goja.Object]*html.Node)}
}

func (p *proxyFactory) element(n *html.Node) goja.Value {
	if n == nil || n.Type != html.ElementNode {
		return goja.Null()
	}
	obj := p.vm.NewDynamicObject(&elementProxy{f: p, n: n})
	p.created[obj] = n
	return obj
}

func (p *proxyFactory) elements(nodes []*html.Node) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = p.element(n)
	}
	return p.vm.NewArray(items...)
}

func (p *proxyFactory) event(ev dom.Event) goja.Value {
	obj := p.vm.NewObject()
	_ = obj.Set("type", string(ev.Type))
	_ = obj.Set("target", p.element(ev.Target))
	_ = obj.Set("currentTarget", p.element(ev.Current))
	_ = obj.Set("bubbles", true)
	return obj
}

func (p *proxyFactory) document() goja.Value {
	obj := p.vm.NewObject()
	if p.doc == nil {
		return obj
	}
	root := p.doc.Root()
	_ = obj.Set("getElementById", func(id string) goja.Value {
		return p.element(p.doc.ElementByID(id))
	})
	_ = obj.Set("querySelector", func(sel string) goja.Value {
		return p.element(first(root, sel))
	})
	_ = obj.Set("querySelectorAll", func(sel string) goja.Value {
		return p.elements(all(root, sel))
	})
	_ = obj.Set("createElement", func(tag string) goja.Value {
		tag = strings.ToLower(tag)
		return p.element(&html.Node{Type: html.ElementNode, Data: tag})
	})
	return obj
}

func first(root *html.Node, sel string) *html.Node {
	s := goquery.NewDocumentFromNode(root).Find(sel).First()
	if s.Length() == 0 {
		return nil
	}
	return s.Get(0)
}

func all(root *html.Node, sel string) []*html.Node {
	return goquery.NewDocumentFromNode(root).Find(sel).Nodes
}

// elementProxy exposes an *html.Node with the subset of the HTMLElement
// interface that form handlers use.
type elementProxy struct {
	f *proxyFactory
	n *html.Node
}

var elementKeys = []string{
	"tagName", "id", "name", "type", "value", "checked", "disabled", "readOnly",
	"hidden", "textContent", "innerHTML", "parentElement", "options", "selectedIndex",
}

func (e *elementProxy) Get(key string) goja.Value {
	vm := e.f.vm
	n := e.n
	switch key {
	case "tagName", "nodeName":
		return vm.ToValue(strings.ToUpper(dom.Tag(n)))
	case "id", "name", "type", "placeholder", "className":
		attr := key
		if key == "className" {
			attr = "class"
		}
		if key == "type" && dom.Tag(n) == "input" {
			return vm.ToValue(dom.InputType(n))
		}
		return vm.ToValue(dom.AttrOr(n, attr, ""))
	case "value":
		return vm.ToValue(dom.Value(n))
	case "checked":
		return vm.ToValue(dom.Checked(n))
	case "disabled":
		return vm.ToValue(dom.HasAttr(n, "disabled"))
	case "readOnly":
		return vm.ToValue(dom.HasAttr(n, "readonly"))
	case "hidden":
		return vm.ToValue(dom.HasAttr(n, "hidden"))
	case "textContent", "innerText":
		return vm.ToValue(dom.TextContent(n))
	case "innerHTML":
		return vm.ToValue(innerHTML(n))
	case "parentElement", "parentNode":
		return e.f.element(dom.ParentElement(n))
	case "form":
		return e.f.element(dom.Closest(n, "form"))
	case "options":
		opts := dom.Options(n)
		nodes := make([]*html.Node, len(opts))
		for i, o := range opts {
			nodes[i] = o.Node
		}
		return e.f.elements(nodes)
	case "selectedIndex":
		return vm.ToValue(dom.SelectedIndex(n))
	case "text":
		return vm.ToValue(strings.TrimSpace(dom.TextContent(n)))
	case "getAttribute":
		return vm.ToValue(func(name string) goja.Value {
			if v, ok := dom.Attr(n, name); ok {
				return vm.ToValue(v)
			}
			return goja.Null()
		})
	case "setAttribute":
		return vm.ToValue(func(name, val string) { dom.SetAttr(n, name, val) })
	case "removeAttribute":
		return vm.ToValue(func(name string) { dom.RemoveAttr(n, name) })
	case "hasAttribute":
		return vm.ToValue(func(name string) bool { return dom.HasAttr(n, name) })
	case "querySelector":
		return vm.ToValue(func(sel string) goja.Value { return e.f.element(first(n, sel)) })
	case "querySelectorAll":
		return vm.ToValue(func(sel string) goja.Value { return e.f.elements(all(n, sel)) })
	case "appendChild":
		return vm.ToValue(func(child goja.Value) goja.Value {
			if c := e.f.unwrap(child); c != nil {
				if c.Parent != nil {
					c.Parent.RemoveChild(c)
				}
				n.AppendChild(c)
			}
			return child
		})
	case "remove":
		return vm.ToValue(func() {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
		})
	case "focus", "blur", "click":
		return vm.ToValue(func() {})
	}
	return goja.Undefined()
}

func (e *elementProxy) Set(key string, val goja.Value) bool {
	n := e.n
	switch key {
	case "value":
		dom.SetValue(n, val.String())
	case "checked":
		dom.SetChecked(n, val.ToBoolean())
	case "disabled", "readOnly", "hidden":
		attr := strings.ToLower(key)
		if val.ToBoolean() {
			dom.SetAttr(n, attr, "")
		} else {
			dom.RemoveAttr(n, attr)
		}
	case "id", "name", "type", "placeholder", "className":
		attr := key
		if key == "className" {
			attr = "class"
		}
		dom.SetAttr(n, attr, val.String())
	case "textContent", "innerText", "text":
		dom.SetTextContent(n, val.String())
	case "innerHTML":
		setInnerHTML(n, val.String())
	case "selectedIndex":
		dom.SelectIndex(n, int(val.ToInteger()))
	default:
		return false
	}
	return true
}

func (e *elementProxy) Has(key string) bool {
	return !goja.IsUndefined(e.Get(key))
}

func (e *elementProxy) Delete(key string) bool {
	return false
}

func (e *elementProxy) Keys() []string {
	return elementKeys
}

// unwrap returns the node behind a proxy created by this factory.
func (p *proxyFactory) unwrap(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return p.created[obj]
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

func setInnerHTML(n *html.Node, markup string) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return
	}
	dom.SetTextContent(n, "")
	for _, c := range nodes {
		n.AppendChild(c)
	}
}
