package browser

import (
	"encoding/json"
	"fmt"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

const codeEvalFailure = "EVAL_FAILURE"

type evalEnvelope struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// jsLocatorHelper provides _find(by, value) and _firstVisible(by, value).
const jsLocatorHelper = `
function _fail(code, msg) { var e = new Error(msg); e.code = code; throw e; }
function _slice(list) { return Array.prototype.slice.call(list || []); }
function _find(by, value) {
  switch (by) {
  case "css":
    try { return _slice(document.querySelectorAll(value)); }
    catch (err) { _fail("VALIDATION", "invalid css selector " + JSON.stringify(value)); }
  case "id":
    var el = document.getElementById(value);
    return el ? [el] : [];
  case "name":
    return _slice(document.getElementsByName(value));
  case "xpath":
    var snap;
    try { snap = document.evaluate(value, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null); }
    catch (err) { _fail("VALIDATION", "invalid xpath " + JSON.stringify(value)); }
    var out = [];
    for (var i = 0; i < snap.snapshotLength; i++) out.push(snap.snapshotItem(i));
    return out;
  case "link_text":
    return _slice(document.querySelectorAll("a")).filter(function(a) { return (a.innerText || a.textContent || "").trim() === value; });
  case "partial_link_text":
    return _slice(document.querySelectorAll("a")).filter(function(a) { return (a.innerText || a.textContent || "").indexOf(value) !== -1; });
  }
  _fail("VALIDATION", "unknown locator strategy " + JSON.stringify(by));
}
function _visible(el) {
  if (!el || !el.isConnected) return false;
  if (el.tagName === "INPUT" && String(el.type).toLowerCase() === "hidden") return false;
  var style = window.getComputedStyle(el);
  if (style.display === "none" || style.visibility === "hidden" || style.visibility === "collapse") return false;
  return el.getClientRects().length > 0;
}
function _firstVisible(by, value) {
  var all = _find(by, value);
  for (var i = 0; i < all.length; i++) if (_visible(all[i])) return all[i];
  return null;
}
`

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func buildIIFE(body string) string {
	return `(function(){
try {
` + jsLocatorHelper + body + `
} catch (err) {
return JSON.stringify({ok:false,error_code:String(err && err.code || "` + codeEvalFailure + `"),error_message:String(err && err.message || err)});
}
})()`
}

func locatorArgs(loc page.Locator) string {
	return jsString(string(loc.By)) + ", " + jsString(loc.Value)
}

func jsIsVisible(loc page.Locator) string {
	return buildIIFE(`
return JSON.stringify({ok:true,data:_firstVisible(` + locatorArgs(loc) + `) !== null});`)
}

func jsResolve(loc page.Locator) string {
	return buildIIFE(`
var el = _firstVisible(` + locatorArgs(loc) + `);
if (!el) return JSON.stringify({ok:false,error_code:"ELEMENT_NOT_FOUND",error_message:"no visible element"});
var href = typeof el.href === "string" ? el.href : el.getAttribute("href");
if (href === null || href === undefined || href === "") return JSON.stringify({ok:false,error_code:"ELEMENT_NOT_FOUND",error_message:"element has no href"});
return JSON.stringify({ok:true,data:new URL(String(href), document.baseURI).href});`)
}

func jsClick(loc page.Locator) string {
	return buildIIFE(`
var el = _firstVisible(` + locatorArgs(loc) + `);
if (!el) return JSON.stringify({ok:false,error_code:"ELEMENT_NOT_FOUND",error_message:"no visible element"});
el.scrollIntoView({block:"center"});
el.click();
return JSON.stringify({ok:true,data:true});`)
}

// decodeEnvelope unpacks a JSON envelope string into out. Failures keep the
// in-page error code when it is one the caller understands.
func decodeEnvelope(raw string, loc page.Locator, out any) error {
	var env evalEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return page.NewError(page.CodeSessionUnavailable, "decode eval result", err)
	}
	if !env.OK {
		msg := fmt.Sprintf("%s: %s", loc, env.ErrorMessage)
		switch env.ErrorCode {
		case page.CodeElementNotFound, page.CodeValidation:
			return page.NewError(env.ErrorCode, msg, nil)
		default:
			return page.NewError(page.CodeSessionUnavailable, msg, nil)
		}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return page.NewError(page.CodeSessionUnavailable, "decode eval data", err)
	}
	return nil
}
