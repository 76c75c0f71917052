package adapter

import (
	"net/url"
	"strconv"
	"strings"
)

// orderedParams keeps query parameters in insertion order; url.Values sorts them.
type orderedParams []param

type param struct {
	key, value string
	raw        bool
}

func (p *orderedParams) add(key, value string) {
	if value == "" {
		return
	}
	*p = append(*p, param{key: key, value: value})
}

// addRaw adds a value that is already in the retailer's encoded form.
func (p *orderedParams) addRaw(key, value string) {
	if value == "" {
		return
	}
	*p = append(*p, param{key: key, value: value, raw: true})
}

func (p *orderedParams) addInt(key string, value *int) {
	if value == nil {
		return
	}
	p.add(key, strconv.Itoa(*value))
}

func (p orderedParams) encode() string {
	pairs := make([]string, 0, len(p))
	for _, kv := range p {
		value := kv.value
		if !kv.raw {
			value = url.QueryEscape(value)
		}
		pairs = append(pairs, url.QueryEscape(kv.key)+"="+value)
	}
	return strings.Join(pairs, "&")
}
