package models

import "testing"

func TestValidRecordType(t *testing.T) {
	for _, recordType := range TrackedRecordTypes {
		if !ValidRecordType(recordType) {
			t.Errorf("ValidRecordType(%q) should be true", recordType)
		}
	}
	for _, recordType := range []string{"", "hobby", "Job", "ACTIVITY"} {
		if ValidRecordType(recordType) {
			t.Errorf("ValidRecordType(%q) should be false", recordType)
		}
	}
}

func TestTrackedRecordTypes_Complete(t *testing.T) {
	expected := []string{
		RecordActivity,
		RecordActivityAddress,
		RecordJob,
		RecordJobAddress,
		RecordAddress,
	}
	if len(TrackedRecordTypes) != len(expected) {
		t.Fatalf("expected %d tracked types, got %d", len(expected), len(TrackedRecordTypes))
	}
	for i, recordType := range expected {
		if TrackedRecordTypes[i] != recordType {
			t.Errorf("TrackedRecordTypes[%d] = %q, expected %q", i, TrackedRecordTypes[i], recordType)
		}
	}
}
