package urls

import (
	neturl "net/url"
	"sort"

	"github.com/dracory/slidebase/shared/constants"
	"github.com/samber/lo"
)

// PageBrowser builds the URL of the table browser page.
func PageBrowser(basePath, actionParam string, params ...map[string]string) string {
	return Build(basePath, actionParam, constants.ActionPageBrowser, params...)
}

// APIView builds the URL the page posts view events to.
func APIView(basePath, actionParam string) string {
	return Build(basePath, actionParam, constants.ActionAPIView)
}

// AssetJS builds the URL of the page script.
func AssetJS(basePath, actionParam string) string {
	return Build(basePath, actionParam, constants.ActionAssetJS)
}

// AssetCSS builds the URL of the page stylesheet.
func AssetCSS(basePath, actionParam string) string {
	return Build(basePath, actionParam, constants.ActionAssetCSS)
}

// Healthz builds the liveness URL.
func Healthz(basePath, actionParam string) string {
	return Build(basePath, actionParam, constants.ActionHealthz)
}

// Readyz builds the readiness URL.
func Readyz(basePath, actionParam string) string {
	return Build(basePath, actionParam, constants.ActionReadyz)
}

// Build constructs a URL like: basePath?actionParam=action&k=v...
// Keys are sorted for stable output. Values are URL-escaped.
func Build(basePath, actionParam, action string, params ...map[string]string) string {
	p := lo.FirstOr(params, map[string]string{})

	if basePath == "" || basePath[0] != '/' {
		basePath = "/" + basePath
	}
	if actionParam == "" {
		actionParam = constants.DefaultActionParam
	}

	q := neturl.Values{}
	if action != "" {
		q.Set(actionParam, action)
	}
	keys := lo.Filter(lo.Keys(p), func(k string, _ int) bool { return k != "" })
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, p[k])
	}

	enc := q.Encode()
	if enc == "" {
		return basePath
	}
	return basePath + "?" + enc
}
