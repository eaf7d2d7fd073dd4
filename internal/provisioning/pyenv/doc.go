// Package pyenv prepares the Python runtime of the project.
//
// The venv phase creates the virtual environment when it is absent and
// activates it by recording VIRTUAL_ENV and PATH in the provisioning state,
// so every later unprivileged command runs inside it. The pip phase
// installs the project's dependency manifest into that environment.
package pyenv
