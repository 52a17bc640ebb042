package main

import (
	"reflect"

	"github.com/bytedance/sonic"
)

func init() {
	// Sonic compiles codecs lazily. Pretouching the API types moves that cost
	// to startup so the first request does not pay it. Errors are ignored;
	// Sonic falls back to compiling on first use.
	_ = sonic.Pretouch(reflect.TypeOf((*base58Request)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*base58Response)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*base58BatchRequest)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*base58BatchResponse)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*checkRequest)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*checkResponse)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*AddressCheck)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*conversionResponse)(nil)).Elem())
	_ = sonic.Pretouch(reflect.TypeOf((*apiError)(nil)).Elem())
}
