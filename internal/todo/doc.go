// Package todo defines tasks, snapshots, and their validation rules.
//
// A snapshot is the durable form of a task list:
//
//	{
//	  "tasks": [
//	    {
//	      "id": 1,
//	      "title": "Write report",
//	      "description": "Quarterly numbers",
//	      "dueDate": "2024-05-01",
//	      "priority": "high",
//	      "completed": false
//	    }
//	  ],
//	  "nextId": 2
//	}
//
// The order of tasks is the user's manual order. It carries no sort
// semantics of its own.
//
// # Priority Values
//
//   - "high": rank 1
//   - "medium": rank 2
//   - "low": rank 3
//
// # Identifiers
//
// Ids are positive integers assigned from the snapshot's nextId counter.
// nextId is always greater than every id ever assigned, so ids of deleted
// tasks are never handed out again.
package todo
