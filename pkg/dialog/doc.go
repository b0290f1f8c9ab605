/*
Package dialog implements the dialog stack.

A Set holds the dialog definitions, registered once at startup. For each turn
the Set binds the persisted stack of the conversation into a Context, which
begins, continues and ends dialogs. Only the top frame runs. When a frame
completes it is popped and its value is handed to the frame below as input.

Nothing is kept in memory between turns: a dialog resumes purely from its
persisted frame (dialog id, step index and private values).

Dialogs never call back into the stack. Asking for a child dialog is a Result
the Context acts on, so a frame can never be popped twice.
*/
package dialog
