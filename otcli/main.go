package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otshaping"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/image/font/gofont/goregular"
)

// tracer traces with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.tyse.fonts":   "Info",
		"trace.font.layout":  "Error",
		"trace.font.shaping": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load (default: Go Regular)")
	pngname := flag.String("png", "shaped.png", "Output file of the render command")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)    // will set the correct level later
	pterm.Info.Println("Welcome to OpenType CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("ot > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, pngfile: *pngname}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font     *otshaping.ScalableFont
	repl     *readline.Instance
	table    *otlayout.TableReader // GSUB or GPOS
	script   ot.Tag
	lang     ot.Tag
	features []ot.Tag // features for shaping; nil for the defaults
	pngfile  string   // output of render
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( font=%s", intp.font.Fontname))
	if intp.table != nil {
		sb.WriteString(fmt.Sprintf(" table=%s", intp.table.Table().Tag))
	}
	if intp.script != 0 {
		sb.WriteString(fmt.Sprintf(" script=%s", intp.script))
	}
	if intp.lang != 0 {
		sb.WriteString(fmt.Sprintf(" lang=%s", intp.lang))
	}
	if intp.features != nil {
		sb.WriteString(fmt.Sprintf(" features=%v", intp.features))
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	TABLE
	SCRIPTS
	LANG
	FEATURES
	USE
	LOOKUPS
	GDEF
	SHAPE
	RENDER
	DEMO
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"table":    TABLE,
	"scripts":  SCRIPTS,
	"lang":     LANG,
	"features": FEATURES,
	"use":      USE,
	"lookups":  LOOKUPS,
	"gdef":     GDEF,
	"shape":    SHAPE,
	"render":   RENDER,
	"demo":     DEMO,
}

var opNames = []string{
	"quit",
	"help",
	"table",
	"scripts",
	"lang",
	"features",
	"use",
	"lookups",
	"gdef",
	"shape",
	"render",
	"demo",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].format = ""
	}
}

// parseCommand splits a line into steps, separated by blanks. Each step has the
// form "op:arg:format", e.g. "scripts:latn" or "lookups:5". Text to shape may
// contain blanks, therefore "shape:" and "render:" consume the rest of the line.
func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	for _, code := range []int{SHAPE, RENDER} {
		prefix := opNames[code] + ":"
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			command.count = 1
			command.op[0].code = code
			command.op[0].arg = line[len(prefix):]
			return &command, nil
		}
	}
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, errors.New("too many steps in command")
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":")
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	HELP:     helpOp,
	TABLE:    tableOp,
	SCRIPTS:  scriptsOp,
	LANG:     langOp,
	FEATURES: featuresOp,
	USE:      useOp,
	LOOKUPS:  lookupsOp,
	GDEF:     gdefOp,
	SHAPE:    shapeOp,
	RENDER:   renderOp,
	DEMO:     demoOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) (err error) {
	if fontname == "" {
		intp.font, err = otshaping.ParseOpenTypeFont(goregular.TTF)
	} else {
		intp.font, err = otshaping.LoadOpenTypeFont(fontname)
	}
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return err
	}
	tracer().Infof("loaded SFNT font = %s", intp.font.Fontname)
	gsub, gpos, err := intp.font.Layout()
	if err != nil {
		tracer().Errorf("cannot decode layout tables of %s: %s", intp.font.Fontname, err)
		return err
	}
	pterm.Printf("layout tables: GDEF=%t GSUB=%t GPOS=%t\n", intp.font.GDef() != nil, gsub != nil, gpos != nil)
	if intp.table = gsub; intp.table == nil {
		intp.table = gpos
	}
	return nil
}

// ----------------------------------------------------------------------

var ErrNoTable = errors.New("no table set")

func (intp *Intp) checkTable() error {
	if intp.table == nil {
		return ErrNoTable
	}
	return nil
}

// scripts returns the scripts to resolve features for.
func (intp *Intp) scripts() []ot.Tag {
	if intp.script == 0 {
		return nil
	}
	return []ot.Tag{intp.script}
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
