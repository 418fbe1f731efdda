package rules

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"netmock/pkg/traffic"
)

// JSONTemplate builds a Generator that renders tpl per match, writing each
// capture group at the corresponding sjson path: paths[i] receives
// groups[i+1]. The template is validated once, at construction.
func JSONTemplate(status int, tpl string, paths ...string) (Generator, error) {
	if !gjson.Valid(tpl) {
		return nil, fmt.Errorf("json template is not valid JSON: %q", tpl)
	}
	return func(url string, groups []string) traffic.Outcome {
		body := tpl
		for i, p := range paths {
			if i+1 >= len(groups) {
				break
			}
			rendered, err := sjson.Set(body, p, groups[i+1])
			if err != nil {
				return traffic.Fail(fmt.Errorf("render template path %q: %w", p, err))
			}
			body = rendered
		}
		return traffic.Respond(status, map[string]string{"Content-Type": "application/json"}, []byte(body))
	}, nil
}
