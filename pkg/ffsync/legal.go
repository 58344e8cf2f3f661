package ffsync

// LegalNotice provides license notices for this engine and its third-party
// dependencies.
const LegalNotice = `ffsync

Licensed under the terms of the MIT License. A copy of this license can be
found later in this text or online at https://opensource.org/licenses/MIT.


================================================================================
ffsync depends on the following third-party software:
================================================================================

errors

https://github.com/pkg/errors

Copyright (c) 2015, Dave Cheney <dave@cheney.net>
All rights reserved.

Used under the terms of the 2-Clause BSD License.

--------------------------------------------------------------------------------

Cobra / pflag

https://github.com/spf13/cobra
https://github.com/spf13/pflag

Copyright 2013 Steve Francia <spf@spf13.com>

Used under the terms of the Apache License, Version 2.0.

--------------------------------------------------------------------------------

color / go-colorable / go-isatty

https://github.com/fatih/color
https://github.com/mattn/go-colorable
https://github.com/mattn/go-isatty

Used under the terms of the MIT License.

--------------------------------------------------------------------------------

humanize

https://github.com/dustin/go-humanize

Copyright (c) 2005-2008 Dustin Sallings <dustin@spy.net>

Used under the terms of the MIT License.

--------------------------------------------------------------------------------

uuid

https://github.com/google/uuid

Copyright (c) 2009,2014 Google Inc. All rights reserved.

Used under the terms of the 3-Clause BSD License (Google version).

--------------------------------------------------------------------------------

doublestar

https://github.com/bmatcuk/doublestar

Copyright (c) 2014 Bob Matcuk

Used under the terms of the MIT License.

--------------------------------------------------------------------------------

sftp

https://github.com/pkg/sftp

Copyright (c) 2013, Dave Cheney

Used under the terms of the 2-Clause BSD License.

--------------------------------------------------------------------------------

golang.org/x/crypto, golang.org/x/sys, golang.org/x/text

https://golang.org/x/

Copyright (c) 2009 The Go Authors. All rights reserved.

Used under the terms of the 3-Clause BSD License (Google version).

--------------------------------------------------------------------------------

go-acl

https://github.com/hectane/go-acl

Used under the terms of the MIT License.

--------------------------------------------------------------------------------

yaml.v3

https://gopkg.in/yaml.v3

Copyright (c) 2006-2010 Kirill Simonov
Copyright (c) 2006-2011 Kirill Simonov

Used under the terms of the MIT and Apache License, Version 2.0.


================================================================================
MIT License
================================================================================

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`
