package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"photobooth-display/internal/testutils"
)

// refreshingElement is an element refreshed on a timer, with the htmx
// attributes it ends up with after inheritance from its ancestors
type refreshingElement struct {
	id      string
	trigger string
	swap    string
	vals    string
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// inherited resolves an htmx attribute the way htmx does: the closest
// element carrying it wins
func inherited(n *html.Node, key string) string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if v, ok := attr(cur, key); ok {
			return v
		}
	}
	return ""
}

func refreshingElements(t *testing.T, body string) []refreshingElement {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	var found []refreshingElement
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if trigger, ok := attr(n, "hx-trigger"); ok && strings.HasPrefix(trigger, "every ") {
				id, _ := attr(n, "id")
				found = append(found, refreshingElement{
					id:      id,
					trigger: trigger,
					swap:    inherited(n, "hx-swap"),
					vals:    inherited(n, "hx-vals"),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func TestPages_RefreshingElementsSwapContent(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddPictures(testutils.PictureSeries("IMG", 1557063300, 2)...)

	tests := []struct {
		path string
		ids  []string
	}{
		{"/", []string{"photobooth_status", "clock"}},
		{"/gallery", []string{"popup", "pictures", "photobooth_status", "clock"}},
		{"/slideshow", []string{"popup", "slide", "photobooth_status", "clock"}},
		{"/last", []string{"banner", "photobooth_status", "clock"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			elements := refreshingElements(t, env.get(tt.path).Body.String())

			ids := make([]string, 0, len(elements))
			for _, el := range elements {
				ids = append(ids, el.id)
				assert.Equal(t, "innerHTML", el.swap, "#%s (%s)", el.id, el.trigger)
				assert.Empty(t, el.vals, "#%s must not send key values", el.id)
			}
			assert.ElementsMatch(t, tt.ids, ids)
		})
	}
}

func TestPages_KeyboardListener(t *testing.T) {
	env := newTestEnv(t)

	doc, err := html.Parse(strings.NewReader(env.get("/gallery").Body.String()))
	require.NoError(t, err)

	var listeners []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if get, _ := attr(n, "hx-get"); get == "/nav" {
				listeners = append(listeners, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	require.Len(t, listeners, 1)
	listener := listeners[0]
	assert.NotEqual(t, "body", listener.Data, "listener attributes would be inherited by the whole page")

	trigger, _ := attr(listener, "hx-trigger")
	assert.Contains(t, trigger, "from:body")
	swap, _ := attr(listener, "hx-swap")
	assert.Equal(t, "none", swap)
}
