package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

// compile maps a locator onto a chromedp selector and query option.
func compile(loc scenario.Locator) (string, chromedp.QueryOption, error) {
	switch loc.Kind {
	case scenario.ByCSS:
		return loc.Value, chromedp.ByQuery, nil
	case scenario.ByXPath:
		return loc.Value, chromedp.BySearch, nil
	case scenario.ByText:
		return textXPath(loc.Value), chromedp.BySearch, nil
	default:
		return "", nil, executor.NewError(executor.CodeValidation,
			fmt.Sprintf("unknown locator kind %q", loc.Kind), nil)
	}
}

// compileFillable maps a locator onto a selector for input targets. Text
// locators resolve through placeholder or label text, since the visible text
// of a form field lives next to it, not inside it.
func compileFillable(loc scenario.Locator) (string, chromedp.QueryOption, error) {
	if loc.Kind == scenario.ByText {
		return fillableTextXPath(loc.Value), chromedp.BySearch, nil
	}
	return compile(loc)
}

// textXPath finds elements whose own text contains the given string,
// excluding ancestors that merely contain such an element.
func textXPath(text string) string {
	lit := xpathLiteral(text)
	return "//*[text()[contains(normalize-space(.), " + lit + ")]]"
}

// fillableTextXPath finds an input or textarea by placeholder, aria-label,
// or preceding label text.
func fillableTextXPath(text string) string {
	lit := xpathLiteral(text)
	return "//input[@placeholder=" + lit + "]" +
		" | //textarea[@placeholder=" + lit + "]" +
		" | //*[@aria-label=" + lit + "][self::input or self::textarea]" +
		" | //label[contains(normalize-space(.), " + lit + ")]/following::*[self::input or self::textarea][1]"
}

// xpathLiteral quotes a string for embedding in an XPath expression. XPath
// 1.0 has no escape sequences, so strings containing both quote kinds need
// concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// visibleExpr builds a JS expression that evaluates to true when the first
// element matched by loc is rendered and visible.
func visibleExpr(loc scenario.Locator) (string, error) {
	const check = `(el => {
		if (!el) return false;
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) return false;
		const st = getComputedStyle(el);
		return st.visibility !== 'hidden' && st.display !== 'none';
	})`

	switch loc.Kind {
	case scenario.ByCSS:
		return check + `(document.querySelector(` + jsQuote(loc.Value) + `))`, nil
	case scenario.ByXPath:
		return xpathVisibleExpr(check, loc.Value), nil
	case scenario.ByText:
		return xpathVisibleExpr(check, textXPath(loc.Value)), nil
	default:
		return "", executor.NewError(executor.CodeValidation,
			fmt.Sprintf("unknown locator kind %q", loc.Kind), nil)
	}
}

func xpathVisibleExpr(check, path string) string {
	return check + `(document.evaluate(` + jsQuote(path) +
		`, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue)`
}

// jsQuote produces a JS string literal.
func jsQuote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
