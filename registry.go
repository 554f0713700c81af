package vscope

// Compile-time budgets. Matches the original fixed-size embedded layout;
// a real port targeting a different MCU would change these constants and
// recompile, never resize at runtime.
const (
	NumChannels  = 5   // acquisition channels
	BufferSize   = 1000 // circular capture buffer depth, per channel
	NameLen      = 16  // fixed name width, including NUL pad
	MaxVariables = 32  // variable catalog capacity
	RTBufferLen  = 16  // RT buffer catalog capacity
	MaxPayload   = 252 // largest command payload
)

// catalogEntry is one row of either the variable catalog or the RT-buffer
// catalog: a fixed-width name plus a borrowed pointer into host storage.
type catalogEntry struct {
	name [NameLen]byte
	ref  *float32
}

func (e *catalogEntry) nameString() string {
	n := 0
	for n < len(e.name) && e.name[n] != 0 {
		n++
	}
	return string(e.name[:n])
}

// registry holds the two append-only catalogs populated before Init and
// sealed at Init. It borrows the host's float storage; it never owns it.
type registry struct {
	vars     [MaxVariables]catalogEntry
	varCount uint8

	rts     [RTBufferLen]catalogEntry
	rtCount uint8

	locked bool
}

// registerVar appends name/ref to the variable catalog. A no-op if the
// catalog is full, ref is nil, or registration is already locked by Init.
func (r *registry) registerVar(name string, ref *float32) {
	if r.locked || ref == nil || int(r.varCount) >= MaxVariables {
		return
	}
	e := &r.vars[r.varCount]
	writeFixedNameBytes(e.name[:], name)
	e.ref = ref
	r.varCount++
}

// registerRTBuffer appends name/ref to the RT-buffer catalog, subject to
// the same pre-init-only, capacity-bounded contract as registerVar.
func (r *registry) registerRTBuffer(name string, ref *float32) {
	if r.locked || ref == nil || int(r.rtCount) >= RTBufferLen {
		return
	}
	e := &r.rts[r.rtCount]
	writeFixedNameBytes(e.name[:], name)
	e.ref = ref
	r.rtCount++
}

// lock seals both catalogs; after this, var_count and rt_count are
// immutable and further register calls are silently dropped.
func (r *registry) lock() {
	r.locked = true
}

func writeFixedNameBytes(dest []byte, name string) {
	for i := range dest {
		dest[i] = 0
	}
	copy(dest, name)
}
