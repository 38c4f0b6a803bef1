//go:build tinygo && baremetal

package hal

import (
	"machine"
)

// Board wiring (RP2040/RP2350 Pico carrier).
const (
	uartTX = machine.GP0
	uartRX = machine.GP1

	rangerTrig = machine.GP4
	rangerEcho = machine.GP5

	pumpRelay   = machine.GP6
	valveSwitch = machine.GP7

	lcdSCK = machine.GP10
	lcdSDO = machine.GP11
	lcdSDI = machine.GP12
	lcdCS  = machine.GP13
	lcdDC  = machine.GP14
	lcdRST = machine.GP15

	sdSDI = machine.GP16
	sdCS  = machine.GP17
	sdSCK = machine.GP18
	sdSDO = machine.GP19

	flowSensor = machine.GP21
)

type tinyGoHAL struct {
	logger  *uartLogger
	panel   Panel
	flash   Flash
	storage Storage
	ranger  Ranger
	flow    *mcuInterruptPin
	pump    *mcuPin
	valve   *mcuPin
}

// New returns the board HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       uartTX,
		RX:       uartRX,
	})
	logger := &uartLogger{uart: uart}

	var panel Panel
	if lcd, err := initILI9488(); err == nil {
		panel = lcd
	} else {
		logger.WriteLineString("hal: lcd: " + err.Error())
		panel = nullPanel{w: ili9488Width, h: ili9488Height}
	}

	var storage Storage = nullStorage{}
	if sd, err := mountSD(); err == nil {
		storage = sd
	} else {
		logger.WriteLineString("hal: sd: " + err.Error())
	}

	return &tinyGoHAL{
		logger:  logger,
		panel:   panel,
		flash:   newRP2Flash(),
		storage: storage,
		ranger:  newHCSR04(rangerTrig, rangerEcho),
		flow:    &mcuInterruptPin{name: "FLOW", pin: flowSensor},
		pump:    &mcuPin{name: "PUMP", pin: pumpRelay, caps: GPIOCapOutput},
		valve:   &mcuPin{name: "VALVE", pin: valveSwitch, caps: GPIOCapInput | GPIOCapPullUp | GPIOCapPullDown},
	}
}

func (h *tinyGoHAL) Logger() Logger        { return h.logger }
func (h *tinyGoHAL) Panel() Panel          { return h.panel }
func (h *tinyGoHAL) Flash() Flash          { return h.flash }
func (h *tinyGoHAL) Storage() Storage      { return h.storage }
func (h *tinyGoHAL) Ranger() Ranger        { return h.ranger }
func (h *tinyGoHAL) FlowPin() InterruptPin { return h.flow }
func (h *tinyGoHAL) PumpPin() GPIOPin      { return h.pump }
func (h *tinyGoHAL) ValvePin() GPIOPin     { return h.valve }
func (h *tinyGoHAL) Keyboard() Keyboard    { return nil }
