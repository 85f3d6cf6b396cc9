// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command libris is the operator CLI: schema migrations, account
// provisioning and manual overdue sweeps.
package main

import "github.com/taibuivan/libris/cmd/libris/commands"

func main() {
	commands.Execute()
}
