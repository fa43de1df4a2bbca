// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// pbdump decodes and encodes Protobuf messages with minipb, given a compiled
// google.protobuf.FileDescriptorSet.
//
//	pbdump decode --descriptors set.binpb --type pkg.Msg [--format text|json] < in.bin
//	pbdump encode --descriptors set.binpb --type pkg.Msg < in.txtpb
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

// Config is the top-level configuration, shared by every command.
var Config = new(struct {
	Log LogConfig `group:"Logging" namespace:"log" env-namespace:"LOG"`
})

// LogConfig configures handling of log events.
type LogConfig struct {
	Level  string `long:"level" env:"LEVEL" default:"warn" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Logging level"`
	Format string `long:"format" env:"FORMAT" default:"text" choice:"json" choice:"text" description:"Logging output format"`
}

// initLog configures the logger.
func initLog(cfg LogConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{})
	}
	log.SetOutput(os.Stderr)

	if lvl, err := log.ParseLevel(cfg.Level); err != nil {
		log.WithField("err", err).Fatal("unrecognized log level")
	} else {
		log.SetLevel(lvl)
	}
}

func main() {
	var parser = flags.NewParser(Config, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		initLog(Config.Log)
		return cmd.Execute(args)
	}

	_, err := parser.AddCommand("decode", "Decode a binary message",
		"Decode a binary message from stdin and print it as text or JSON", &cmdDecode{})
	must(err, "failed to add decode command")

	_, err = parser.AddCommand("encode", "Encode a text message",
		"Encode a text-format message from stdin and write it as binary", &cmdEncode{})
	must(err, "failed to add encode command")

	if _, err := parser.Parse(); err != nil {
		var flagErr, ok = err.(*flags.Error)
		if !ok {
			log.WithField("err", err).Fatal("command failed")
		}
		switch flagErr.Type {
		case flags.ErrHelp:
			os.Exit(0)
		case flags.ErrDuplicatedFlag, flags.ErrTag, flags.ErrInvalidTag, flags.ErrShortNameTooLong, flags.ErrMarshal:
			panic(err)
		default:
			// go-flags has already printed the problem.
			os.Exit(1)
		}
	}
}

func must(err error, msg string, extra ...any) {
	if err == nil {
		return
	}
	var fields = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		fields[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(fields).Fatal(msg)
}
