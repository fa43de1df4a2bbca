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

package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb"
)

// schemaConfig selects the message type to work with.
type schemaConfig struct {
	Descriptors string `long:"descriptors" short:"d" required:"true" description:"Path to an encoded google.protobuf.FileDescriptorSet"`
	Type        string `long:"type" short:"t" required:"true" description:"Full name of the message type"`
	Limit       int    `long:"limit" default:"0" description:"Maximum bytes to allocate for the message; zero for no limit"`
}

// load compiles the configured message type.
func (cfg *schemaConfig) load() (*minipb.MessageType, error) {
	schema, err := os.ReadFile(cfg.Descriptors)
	if err != nil {
		return nil, errors.Wrap(err, "reading descriptors")
	}
	ty, err := minipb.CompileFromBytes(schema, protoreflect.FullName(cfg.Type))
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s", cfg.Type)
	}
	log.WithFields(log.Fields{
		"type":        cfg.Type,
		"descriptors": cfg.Descriptors,
	}).Debug("compiled message type")
	return ty, nil
}

func (cfg *schemaConfig) shared() *minipb.Shared {
	shared := new(minipb.Shared)
	shared.SetLimit(cfg.Limit)
	return shared
}

type cmdDecode struct {
	schemaConfig
	Output         string `long:"format" short:"f" default:"text" choice:"text" choice:"json" description:"Output format"`
	MaxDepth       int    `long:"max-depth" default:"100" description:"Maximum submessage nesting depth"`
	DiscardUnknown bool   `long:"discard-unknown" description:"Drop unknown fields while decoding"`
	AllowAlias     bool   `long:"alias" description:"Decode strings in place, without copying the input"`
}

func (cmd *cmdDecode) Execute([]string) error {
	return cmd.run(os.Stdin, os.Stdout)
}

func (cmd *cmdDecode) run(in io.Reader, out io.Writer) error {
	ty, err := cmd.load()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	shared := cmd.shared()
	defer shared.Free()

	m, err := minipb.Unmarshal(data, ty, shared,
		minipb.WithMaxDepth(cmd.MaxDepth),
		minipb.WithDiscardUnknown(cmd.DiscardUnknown),
		minipb.WithAllowAlias(cmd.AllowAlias),
	)
	if err != nil {
		return errors.Wrapf(err, "decoding %s", cmd.Type)
	}
	log.WithFields(log.Fields{
		"type":  cmd.Type,
		"bytes": len(data),
		"arena": shared.Used(),
	}).Info("decoded message")

	var text []byte
	switch cmd.Output {
	case "json":
		text, err = protojson.MarshalOptions{Multiline: true}.Marshal(m)
	default:
		text, err = prototext.MarshalOptions{Multiline: true, EmitUnknown: true}.Marshal(m)
	}
	if err != nil {
		return errors.Wrap(err, "formatting output")
	}
	if _, err = out.Write(text); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}

type cmdEncode struct {
	schemaConfig
	Input         string `long:"format" short:"f" default:"text" choice:"text" choice:"json" description:"Input format"`
	SkipUnknown   bool   `long:"skip-unknown" description:"Omit unknown fields from the output"`
	CheckRequired bool   `long:"check-required" description:"Fail if a required field is not set"`
}

func (cmd *cmdEncode) Execute([]string) error {
	return cmd.run(os.Stdin, os.Stdout)
}

func (cmd *cmdEncode) run(in io.Reader, out io.Writer) error {
	ty, err := cmd.load()
	if err != nil {
		return err
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	shared := cmd.shared()
	defer shared.Free()

	m := shared.NewMessage(ty)
	if m == nil {
		return errors.WithStack(minipb.ErrAllocation)
	}
	switch cmd.Input {
	case "json":
		err = protojson.UnmarshalOptions{AllowPartial: true}.Unmarshal(text, m)
	default:
		err = prototext.UnmarshalOptions{AllowPartial: true}.Unmarshal(text, m)
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %s", cmd.Type)
	}

	data, err := m.Marshal(
		minipb.WithSkipUnknown(cmd.SkipUnknown),
		minipb.WithCheckRequired(cmd.CheckRequired),
	)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", cmd.Type)
	}
	log.WithFields(log.Fields{
		"type":  cmd.Type,
		"bytes": len(data),
	}).Info("encoded message")

	if _, err = out.Write(data); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}
