package storage

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"termsheet/internal/sheet"
)

var snapshotBucket = []byte("snapshots")

// ErrSnapshotNotFound is returned by Get and Delete for unknown names.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshots keeps named copies of sheets in a bbolt database. Each value is
// the sheet's serialized form.
type Snapshots struct {
	db *bbolt.DB
}

func OpenSnapshots(path string) (*Snapshots, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshots %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Snapshots{db: db}, nil
}

func (s *Snapshots) Close() error {
	return s.db.Close()
}

// Put stores sh under name, replacing any earlier snapshot of that name.
func (s *Snapshots) Put(name string, sh *sheet.Sheet) error {
	if name == "" {
		return errors.New("snapshot name is empty")
	}
	var buf bytes.Buffer
	if err := sh.Serialize(&buf); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(name), buf.Bytes())
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"snapshot": name, "cells": sh.Len()}).Info("stored snapshot")
	return nil
}

// Get rebuilds the sheet stored under name.
func (s *Snapshots) Get(name string) (*sheet.Sheet, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(snapshotBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		// v is only valid inside the transaction.
		data = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet.Deserialize(bytes.NewReader(data))
}

// List returns the snapshot names in byte order.
func (s *Snapshots) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(snapshotBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	return names, err
}

func (s *Snapshots) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		return b.Delete([]byte(name))
	})
}
