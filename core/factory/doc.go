// Package factory provides a small generic registry used to instantiate
// pluggable modules (metrics sinks, run-log stores) from configuration. A
// module is described by a type string and a map of raw settings; factories
// decode the settings into typed structs with Decode.
//
//	reg := factory.NewRegistry[runlog.Store]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (runlog.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return openJSONL(c.Path)
//	})
//	store, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "runs.jsonl"}})
package factory
