package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"gymportal/internal/application/orchestrators"
)

// seedFile is the YAML layout accepted by seed-members.
type seedFile struct {
	Members []struct {
		Name   string `yaml:"name"`
		Email  string `yaml:"email"`
		Phone  string `yaml:"phone"`
		Plan   string `yaml:"plan"`
		Status string `yaml:"status"`
	} `yaml:"members"`
}

func readSeedFile(path string) ([]orchestrators.MemberSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return parseSeeds(f)
}

// parseSeeds decodes a seed document. Unknown keys are rejected so typos surface.
func parseSeeds(r io.Reader) ([]orchestrators.MemberSeed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc seedFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(doc.Members) == 0 {
		return nil, errors.New("seed file lists no members")
	}
	seeds := make([]orchestrators.MemberSeed, 0, len(doc.Members))
	for _, m := range doc.Members {
		seeds = append(seeds, orchestrators.MemberSeed{
			Name:   m.Name,
			Email:  m.Email,
			Phone:  m.Phone,
			Plan:   m.Plan,
			Status: m.Status,
		})
	}
	return seeds, nil
}
