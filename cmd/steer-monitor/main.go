//go:build !rp2040 && !rp2350

// steer-monitor tails the board's console UART from a host machine.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tarm/serial"
)

func main() {
	device := flag.String("port", "/dev/ttyACM0", "serial device of the board")
	baud := flag.Int("baud", 115200, "console baud rate")
	flag.Parse()

	port, err := serial.OpenPort(&serial.Config{
		Name:        *device,
		Baud:        *baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "steer-monitor: open %s: %v\n", *device, err)
		os.Exit(1)
	}
	defer port.Close()

	fmt.Printf("steer-monitor: listening on %s @ %d\n", *device, *baud)

	sc := bufio.NewScanner(port)
	for sc.Scan() {
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), sc.Text())
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "steer-monitor: read: %v\n", err)
		os.Exit(1)
	}
}
