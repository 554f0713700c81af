// command vscopesim drives a Scope against a synthetic signal and a real
// serial transport, as a reference host-side harness for the framed
// protocol.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/viper"
	"github.com/tarm/serial"
	"golang.org/x/sys/unix"

	vscope "github.com/tomrford/v2scope"
)

var (
	serialDev  = flag.String("device", "", "serial device (defaults to a platform guess)")
	isrKHz     = flag.Uint("isr-khz", 10, "simulated ISR rate in kHz")
	configFile = flag.String("config", "", "viper config file with persisted timing/trigger/channels")
	captureOut = flag.String("capture-out", "", "write the current timing/trigger/channel-map configuration to this file as CBOR")
	verbose    = flag.Bool("v", false, "report transport write errors and spew-dump config load errors")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func openSerial(dev string) (io.ReadWriteCloser, error) {
	const baudRate = 115200

	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyUSB0", "/dev/ttyACM0")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("vscopesim: no serial device specified")
	}

	var firstErr error
	for _, d := range devices {
		port, err := serial.OpenPort(&serial.Config{Name: d, Baud: baudRate})
		if err == nil {
			return port, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// nowMicros reads CLOCK_MONOTONIC, the same timebase the Frame Receiver's
// inter-byte timeout is specified against.
func nowMicros() uint32 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint32(ts.Sec*1e6 + ts.Nsec/1e3)
}

func run() error {
	port, err := openSerial(*serialDev)
	if err != nil {
		return fmt.Errorf("vscopesim: %w", err)
	}
	defer port.Close()

	var signalChan [vscope.NumChannels]float32
	scope := vscope.NewScope(func(frame []byte) {
		if _, err := port.Write(frame); err != nil && *verbose {
			fmt.Fprintf(os.Stderr, "vscopesim: write: %v\n", err)
		}
	})
	for i := range signalChan {
		scope.RegisterVar(fmt.Sprintf("ch%d", i), &signalChan[i])
	}
	scope.Init("vscopesim", uint16(*isrKHz))

	if *configFile != "" {
		v := viper.New()
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err == nil {
			if err := scope.LoadPersistedConfig(v); err != nil && *verbose {
				fmt.Fprintf(os.Stderr, "vscopesim: config: %v\n", spew.Sdump(err))
			}
		}
	}

	tickPeriod := time.Duration(float64(time.Second) / (float64(*isrKHz) * 1000))
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	rxBuf := make([]byte, 256)
	rxDone := make(chan struct{})
	go func() {
		defer close(rxDone)
		for {
			n, err := port.Read(rxBuf)
			if n > 0 {
				scope.Feed(rxBuf[:n], nowMicros())
			}
			if err != nil {
				return
			}
		}
	}()

	start := time.Now()
	for {
		select {
		case <-ticker.C:
			t := time.Since(start).Seconds()
			for i := range signalChan {
				signalChan[i] = float32(math.Sin(2*math.Pi*float64(i+1)*t) * 1000)
			}
			scope.Tick()
		case <-rxDone:
			return nil
		}

		if *captureOut != "" {
			writeCaptureOnce(scope, *captureOut)
			*captureOut = ""
		}
	}
}

// writeCaptureOnce archives the Scope's current timing/trigger/channel-map
// configuration to path as CBOR, standing in for the legacy DOWNLOAD
// handshake's file output now that the framed protocol owns sample
// transfer.
func writeCaptureOnce(s *vscope.Scope, path string) {
	v := viper.New()
	s.SavePersistedConfig(v)

	data, err := cbor.Marshal(v.AllSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "vscopesim: cbor marshal: %v\n", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vscopesim: write %s: %v\n", path, err)
	}
}
