package fake

import "sync"

// Slave is a device on the simulated bus. The peripheral calls into it as the master addresses,
// writes to and reads from it.
type Slave interface {
	// Address is the 7-bit address the slave acknowledges.
	Address() uint8
	// BeginWrite is called when the slave acknowledged its address with the write bit.
	BeginWrite()
	// Write receives one byte from the master and returns whether it is acknowledged.
	Write(b byte) bool
	// BeginRead is called when the slave acknowledged its address with the read bit.
	BeginRead()
	// Read returns the next byte the slave transmits.
	Read() byte
	// End is called on stop or repeated start.
	End()
}

// Memory is a slave with 256 byte-wide registers and an auto-incrementing register pointer,
// the layout most sensors and EEPROMs use. The first byte of a write sets the pointer; later bytes
// are stored at the pointer. Reads return bytes from the pointer. The pointer wraps at 0xFF.
type Memory struct {
	mu        sync.Mutex
	addr      uint8
	regs      [256]byte
	ptr       byte
	ptrSet    bool
	written   int
	nackAfter int
}

// NewMemory returns a zeroed Memory at the 7-bit address addr.
func NewMemory(addr uint8) *Memory {
	return &Memory{addr: addr, nackAfter: -1}
}

// Address implements Slave.
func (m *Memory) Address() uint8 {
	return m.addr
}

// NACKAfter makes the memory acknowledge only the first n data bytes of each write. A negative n
// acknowledges everything.
func (m *Memory) NACKAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nackAfter = n
}

// Reg returns the value of register reg.
func (m *Memory) Reg(reg byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg]
}

// SetReg sets register reg without bus traffic.
func (m *Memory) SetReg(reg, v byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = v
}

// Pointer returns the current register pointer.
func (m *Memory) Pointer() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ptr
}

// BeginWrite implements Slave.
func (m *Memory) BeginWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ptrSet = false
	m.written = 0
}

// Write implements Slave.
func (m *Memory) Write(b byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ptrSet {
		m.ptr = b
		m.ptrSet = true
		return true
	}
	if m.nackAfter >= 0 && m.written >= m.nackAfter {
		return false
	}
	m.regs[m.ptr] = b
	m.ptr++
	m.written++
	return true
}

// BeginRead implements Slave.
func (m *Memory) BeginRead() {}

// Read implements Slave.
func (m *Memory) Read() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.regs[m.ptr]
	m.ptr++
	return b
}

// End implements Slave.
func (m *Memory) End() {}
