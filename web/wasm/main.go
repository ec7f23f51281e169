//go:build js && wasm

package main

import (
	"context"
	"errors"
	"syscall/js"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/internal/codec"
	"github.com/mohualzy/VoiceIce/internal/decodecache"
	"github.com/mohualzy/VoiceIce/internal/logging"
	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

var (
	session *studio.Session
	funcs   []js.Func
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", export(func(args []js.Value) any {
		logger := logging.Discard()
		if len(args) > 0 && args[0].Type() == js.TypeString {
			l, _, err := logging.New(consoleWriter{}, logging.Options{Level: args[0].String()})
			if err != nil {
				return err.Error()
			}

			logger = l
		}

		cache := decodecache.New(decodecache.Options{InMemory: true, Logger: logger})
		session = studio.NewSession(vault.New(vault.WithLogger(logger)), cache,
			temperature.NewPipeline(temperature.WithLogger(logger)), studio.WithLogger(logger))

		return js.Null()
	}))

	api.Set("submitUpload", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return result(nil, errNotReady)
		}

		return submit(vault.Upload(args[0].String(), bytesFromJS(args[1])))
	}))

	api.Set("submitRecording", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return result(nil, errNotReady)
		}

		return submit(vault.Recording(bytesFromJS(args[0])))
	}))

	api.Set("select", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return errNotReady.Error()
		}

		return errValue(session.Select(args[0].String()))
	}))

	api.Set("delete", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return errNotReady.Error()
		}

		arr := args[0]
		names := make([]string, arr.Length())
		for i := range names {
			names[i] = arr.Index(i).String()
		}

		return errValue(session.Delete(context.Background(), names...))
	}))

	api.Set("setTemperature", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return errNotReady.Error()
		}

		return errValue(session.SetTemperature(args[0].Float()))
	}))

	api.Set("transformed", export(func(_ []js.Value) any {
		if session == nil {
			return result(nil, errNotReady)
		}

		r, err := session.Transformed(context.Background())
		if err != nil {
			return result(nil, err)
		}

		samples := r.Transformed.Samples
		arr := js.Global().Get("Float32Array").New(len(samples))
		for i, v := range samples {
			arr.SetIndex(i, float32(v))
		}

		return result(map[string]any{
			"name":       r.Name,
			"samples":    arr,
			"sampleRate": r.Transformed.SampleRate,
			"effect":     r.Effect,
		}, nil)
	}))

	api.Set("transformedWAV", export(func(_ []js.Value) any {
		if session == nil {
			return result(nil, errNotReady)
		}

		r, err := session.Transformed(context.Background())
		if err != nil {
			return result(nil, err)
		}

		wav, err := r.WAV()
		if err != nil {
			return result(nil, err)
		}

		arr := js.Global().Get("Uint8Array").New(len(wav))
		js.CopyBytesToJS(arr, wav)

		return result(map[string]any{"name": r.Name, "wav": arr}, nil)
	}))

	api.Set("names", export(func(_ []js.Value) any {
		if session == nil {
			return js.Global().Get("Array").New(0)
		}

		names := session.Names()
		out := make([]any, len(names))
		for i, n := range names {
			out[i] = n
		}

		return out
	}))

	api.Set("report", export(func(_ []js.Value) any {
		if session == nil {
			return js.Null()
		}

		r := session.Report()

		return map[string]any{
			"temperature": float64(r.Temperature),
			"intensity":   r.Intensity,
			"calm":        r.Calm,
			"flow":        r.Flow,
			"mood":        string(r.Mood),
			"caption":     r.Caption,
			"hint":        r.Hint,
		}
	}))

	api.Set("analyze", export(func(_ []js.Value) any {
		if session == nil {
			return result(nil, errNotReady)
		}

		a, err := session.Analyze(context.Background(), studio.AnalysisOptions{})
		if err != nil {
			return result(nil, err)
		}

		return result(map[string]any{
			"original":    view(a.Original),
			"transformed": view(a.Transformed),
			"highBandDB":  a.HighBandDB,
		}, nil)
	}))

	js.Global().Set("VoiceIce", api)
	select {}
}

var errNotReady = errors.New("voiceice: call init first")

func submit(src vault.Source) any {
	name, created, err := session.Submit(context.Background(), src)
	if err != nil {
		return result(nil, err)
	}

	return result(map[string]any{"name": name, "created": created}, nil)
}

// result wraps a value or error as {ok, value} / {ok, error, decode}.
func result(v map[string]any, err error) any {
	if err != nil {
		return map[string]any{
			"ok":     false,
			"error":  err.Error(),
			"decode": errors.Is(err, codec.ErrDecode),
		}
	}

	v["ok"] = true

	return v
}

func errValue(err error) any {
	if err != nil {
		return err.Error()
	}

	return js.Null()
}

func view(v studio.View) map[string]any {
	return map[string]any{
		"min":        float32Array(v.Waveform.Min),
		"max":        float32Array(v.Waveform.Max),
		"rmsDB":      v.Stats.RMS_dB,
		"peakDB":     v.Stats.Peak_dB,
		"sampleRate": v.Waveform.SampleRate,
	}
}

func float32Array(x []float64) js.Value {
	arr := js.Global().Get("Float32Array").New(len(x))
	for i, v := range x {
		arr.SetIndex(i, float32(v))
	}

	return arr
}

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)

	return b
}

// consoleWriter sends log lines to console.log.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)

	return f
}
