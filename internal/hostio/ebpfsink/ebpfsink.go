// Package ebpfsink implements hostio.EventSink over a perf-event-array
// map, used when the debuggee is a traced Linux process rather than a
// hypervisor: CPUID/syscall/MSR-shaped triggers that a VMX-root-mode
// debugger would catch via vm-exits are modeled here as perf samples
// emitted by an externally loaded eBPF program, proving
// internal/event's Kind/Tag bookkeeping is transport-agnostic.
package ebpfsink

import (
	"encoding/binary"
	"sync"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/perf"

	"hyperdbg/internal/hostio"
)

// Sample is the fixed-layout record the loaded eBPF program writes into
// the perf event array: kind tag, pid/tgid, cpu and up to 8 uint64s of
// kind-specific payload (CPUID leaf/subleaf, syscall nr/args, ...).
type Sample struct {
	Kind uint32
	PID  uint32
	TID  uint32
	Core uint32
	Data [8]uint64
}

var kindNames = map[uint32]string{
	1: "cpuid", 2: "syscall", 3: "msr_read", 4: "msr_write",
}

// Sink reads Sample records off a perf event array and republishes them
// as hostio.RawEvent on its Events channel.
type Sink struct {
	array  *ebpf.Map
	reader *perf.Reader
	out    chan hostio.RawEvent

	mu      sync.Mutex
	running bool
}

// New wraps an already-loaded PerfEventArray map; loading the eBPF
// program itself is out of scope here (no bytecode ships with this
// module) — the map is expected to be populated by an external loader.
func New(array *ebpf.Map) *Sink {
	return &Sink{array: array, out: make(chan hostio.RawEvent, 64)}
}

func (s *Sink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	rd, err := perf.NewReader(s.array, 4096)
	if err != nil {
		return err
	}
	s.reader = rd
	s.running = true
	go s.loop(rd)
	return nil
}

func (s *Sink) loop(rd *perf.Reader) {
	for {
		rec, err := rd.Read()
		if err != nil {
			close(s.out)
			return
		}
		if rec.LostSamples > 0 {
			continue
		}
		if len(rec.RawSample) < 20 {
			continue
		}
		var smp Sample
		if err := decodeSample(rec.RawSample, &smp); err != nil {
			continue
		}
		s.out <- hostio.RawEvent{
			Kind:      kindNames[smp.Kind],
			ProcessID: uint64(smp.PID),
			ThreadID:  uint64(smp.TID),
			Core:      int(smp.Core),
			Data:      smp.Data,
		}
	}
}

func decodeSample(raw []byte, s *Sample) error {
	s.Kind = binary.LittleEndian.Uint32(raw[0:4])
	s.PID = binary.LittleEndian.Uint32(raw[4:8])
	s.TID = binary.LittleEndian.Uint32(raw[8:12])
	s.Core = binary.LittleEndian.Uint32(raw[12:16])
	for i := 0; i < 8 && 16+(i+1)*8 <= len(raw); i++ {
		s.Data[i] = binary.LittleEndian.Uint64(raw[16+i*8 : 16+(i+1)*8])
	}
	return nil
}

func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	return s.reader.Close()
}

func (s *Sink) Events() <-chan hostio.RawEvent { return s.out }
