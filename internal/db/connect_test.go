package db

import "testing"

func TestMigrationNamesOrdered(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("expected at least 2 migrations, got %v", names)
	}
	if names[0] != "0001_users_tasks.sql" {
		t.Fatalf("expected users/tasks schema first, got %s", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("migrations not sorted: %v", names)
		}
	}
}

func TestConnectRedisEmptyAddr(t *testing.T) {
	if c := ConnectRedis("", "", 0); c != nil {
		t.Fatal("expected nil client without address")
	}
}

func TestConnectRedisUnreachable(t *testing.T) {
	if c := ConnectRedis("127.0.0.1:1", "", 0); c != nil {
		t.Fatal("expected nil client when redis does not answer")
	}
}
