package backend

//#cgo !windows pkg-config: opencv4
//#cgo CXXFLAGS: --std=c++11
//#include <stdlib.h>
//#include "registry.h"
import "C"
import "unsafe"

func toIDs(c C.BackendIDs) []ID {
	defer C.Registry_FreeIDs(c)
	if c.length == 0 {
		return nil
	}
	raw := unsafe.Slice((*C.int)(unsafe.Pointer(c.ids)), int(c.length))
	out := make([]ID, len(raw))
	for i, v := range raw {
		out[i] = ID(v)
	}
	return out
}

// runtimeName is the name the linked OpenCV build uses for id.
func runtimeName(id ID) string {
	cs := C.Registry_GetBackendName(C.int(id))
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs)
}

// Available asks the linked OpenCV build which videoio backends it was
// compiled with. Camera capability comes from the camera backend list; the
// remaining mode bits come from the name table.
func Available() *Registry {
	cams := map[ID]bool{}
	camIDs := toIDs(C.Registry_GetCameraBackends())
	for _, id := range camIDs {
		cams[id] = true
	}

	r := &Registry{}
	seen := map[ID]bool{}
	add := func(id ID) {
		if seen[id] {
			return
		}
		seen[id] = true
		b := Backend{ID: id, Name: runtimeName(id)}
		if k, ok := lookup(id); ok {
			b.Mode = k.Mode &^ CaptureByIndex
			if b.Name == "" {
				b.Name = k.Name
			}
		}
		if cams[id] {
			b.Mode |= CaptureByIndex
		}
		r.backends = append(r.backends, b)
	}
	for _, id := range toIDs(C.Registry_GetBackends()) {
		add(id)
	}
	for _, id := range camIDs {
		add(id)
	}
	return r
}
